package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avifenesh/expense-track-sub006/internal/database"
	"github.com/avifenesh/expense-track-sub006/internal/fx"
	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/avifenesh/expense-track-sub006/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// each test gets its own named in-memory database; a plain :memory: DSN
// would give every pooled connection a different database
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func testCtx(t *testing.T, method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	c.Request = httptest.NewRequest(method, path, &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Username:          username,
		Email:             username + "@example.com",
		PasswordHash:      "x",
		PreferredCurrency: "USD",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func seedAccount(t *testing.T, db *gorm.DB, userID uint, name string) *models.Account {
	t.Helper()
	account := models.Account{UserID: userID, Name: name, Currency: "USD"}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return &account
}

func seedCategory(t *testing.T, db *gorm.DB, userID uint, name, catType string) *models.Category {
	t.Helper()
	category := models.Category{UserID: userID, Name: name, Type: catType}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return &category
}

func TestRegister_CreatesAccountAndTrial(t *testing.T) {
	db := testDB(t)
	h := NewAuthHandler(db, "secret", 24, 4)

	c, w := testCtx(t, http.MethodPost, "/api/auth/register", gin.H{
		"username":         "alice",
		"email":            "alice@example.com",
		"password":         "Password1",
		"confirm_password": "Password1",
	})
	h.Register(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var user models.User
	if err := db.Where("username = ?", "alice").First(&user).Error; err != nil {
		t.Fatalf("user not created: %v", err)
	}
	// the configured cost, not a hardcoded one, shows up in the hash
	if cost, err := bcrypt.Cost([]byte(user.PasswordHash)); err != nil || cost != 4 {
		t.Errorf("bcrypt cost = %d (%v), want 4", cost, err)
	}

	var account models.Account
	if err := db.Where("user_id = ?", user.ID).First(&account).Error; err != nil {
		t.Fatalf("default account not created: %v", err)
	}
	if account.Name != "Main" {
		t.Errorf("default account name = %s, want Main", account.Name)
	}

	var sub models.Subscription
	if err := db.Where("user_id = ?", user.ID).First(&sub).Error; err != nil {
		t.Fatalf("trial subscription not created: %v", err)
	}
	if sub.Plan != models.PlanTrial || !sub.IsActive(time.Now()) {
		t.Errorf("subscription = %s/%s, want active trial", sub.Plan, sub.Status)
	}
}

func TestAccountDelete_LastAccountRejected(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "bob")
	account := seedAccount(t, db, user.ID, "Only")
	h := NewAccountHandler(db)

	c, w := testCtx(t, http.MethodDelete, "/api/accounts/1", nil)
	c.Set("currentUser", user)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(account.ID)}}
	h.Delete(c)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body = %s", w.Code, w.Body.String())
	}
}

func TestAccountDelete_SoftDeletesWithAudit(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "carol")
	first := seedAccount(t, db, user.ID, "First")
	seedAccount(t, db, user.ID, "Second")
	h := NewAccountHandler(db)

	c, w := testCtx(t, http.MethodDelete, "/api/accounts/1", nil)
	c.Set("currentUser", user)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(first.ID)}}
	h.Delete(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var row models.Account
	if err := db.First(&row, first.ID).Error; err != nil {
		t.Fatalf("account row gone, want soft delete: %v", err)
	}
	if row.DeletedAt == nil {
		t.Error("DeletedAt not set")
	}
	if row.DeletedBy == nil || *row.DeletedBy != user.ID {
		t.Error("DeletedBy not set to the deleting user")
	}

	// the soft-deleted row is invisible to the active scope
	var active int64
	if err := activeAccounts(db, user.ID).Count(&active).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if active != 1 {
		t.Errorf("active accounts = %d, want 1", active)
	}
}

func TestCategoryCreate_DuplicateConflict(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "dave")
	h := NewCategoryHandler(db)

	body := gin.H{"name": "Groceries", "type": "expense"}

	c1, w1 := testCtx(t, http.MethodPost, "/api/categories", body)
	c1.Set("currentUser", user)
	h.Create(c1)
	if w1.Code != http.StatusOK {
		t.Fatalf("first create status = %d, body = %s", w1.Code, w1.Body.String())
	}

	c2, w2 := testCtx(t, http.MethodPost, "/api/categories", body)
	c2.Set("currentUser", user)
	h.Create(c2)
	if w2.Code != http.StatusConflict {
		t.Fatalf("second create status = %d, want 409; body = %s", w2.Code, w2.Body.String())
	}

	var count int64
	db.Model(&models.Category{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("categories = %d, want 1", count)
	}
}

func TestBudgetUpsert_Overwrites(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "erin")
	account := seedAccount(t, db, user.ID, "Main")
	category := seedCategory(t, db, user.ID, "Food", models.TypeExpense)
	h := NewBudgetHandler(db)

	mk := func(planned float64) gin.H {
		return gin.H{
			"account_id":  account.ID,
			"category_id": category.ID,
			"month":       "2025-06",
			"planned":     planned,
		}
	}

	c1, w1 := testCtx(t, http.MethodPost, "/api/budgets", mk(400))
	c1.Set("currentUser", user)
	h.Upsert(c1)
	if w1.Code != http.StatusOK {
		t.Fatalf("first upsert status = %d, body = %s", w1.Code, w1.Body.String())
	}

	c2, w2 := testCtx(t, http.MethodPost, "/api/budgets", mk(550))
	c2.Set("currentUser", user)
	h.Upsert(c2)
	if w2.Code != http.StatusOK {
		t.Fatalf("second upsert status = %d, body = %s", w2.Code, w2.Body.String())
	}

	var budgets []models.Budget
	db.Where("user_id = ?", user.ID).Find(&budgets)
	if len(budgets) != 1 {
		t.Fatalf("budgets = %d, want 1", len(budgets))
	}
	if budgets[0].Planned != 550 {
		t.Errorf("planned = %v, want 550", budgets[0].Planned)
	}
}

func TestRecurringApply_Idempotent(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "frank")
	account := seedAccount(t, db, user.ID, "Main")
	category := seedCategory(t, db, user.ID, "Rent", models.TypeExpense)

	tpl := models.RecurringTemplate{
		UserID:     user.ID,
		AccountID:  account.ID,
		CategoryID: category.ID,
		Type:       models.TypeExpense,
		Name:       "Rent",
		Amount:     1200,
		Currency:   "USD",
		DayOfMonth: 31,
		StartMonth: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		IsActive:   true,
	}
	if err := db.Create(&tpl).Error; err != nil {
		t.Fatalf("seed template: %v", err)
	}

	h := NewRecurringHandler(db, fx.NewService(db, ""))
	apply := func() *httptest.ResponseRecorder {
		c, w := testCtx(t, http.MethodPost, "/api/recurring/apply", gin.H{"month": "2025-02"})
		c.Set("currentUser", user)
		h.Apply(c)
		return w
	}

	if w := apply(); w.Code != http.StatusOK {
		t.Fatalf("first apply status = %d, body = %s", w.Code, w.Body.String())
	}
	if w := apply(); w.Code != http.StatusOK {
		t.Fatalf("second apply status = %d, body = %s", w.Code, w.Body.String())
	}

	var txs []models.Transaction
	db.Where("user_id = ?", user.ID).Find(&txs)
	if len(txs) != 1 {
		t.Fatalf("transactions = %d, want 1 after double apply", len(txs))
	}

	tx := txs[0]
	if !tx.IsRecurring || tx.RecurringTemplateID == nil || *tx.RecurringTemplateID != tpl.ID {
		t.Error("transaction not linked to its template")
	}
	// day 31 normalizes to Feb 28 in a non-leap year
	if got := tx.OccurredAt.Format("2006-01-02"); got != "2025-02-28" {
		t.Errorf("occurred at %s, want 2025-02-28", got)
	}
}

func TestExportJSON_BrandNewUserGetsEmptyArrays(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "grace")
	h := NewExportHandler(db, "test-key")

	c, w := testCtx(t, http.MethodGet, "/api/export/json", nil)
	c.Set("currentUser", user)
	c.Params = gin.Params{{Key: "format", Value: "json"}}
	h.Export(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	// a user with no data still gets every section, as [] rather than null
	for _, section := range []string{
		"accounts", "categories", "transactions", "budgets",
		"recurring_templates", "holdings", "shared_expenses",
		"transaction_requests",
	} {
		raw, ok := body[section]
		if !ok {
			t.Errorf("section %q missing from export", section)
			continue
		}
		if got := string(raw); got != "[]" {
			t.Errorf("section %q = %s, want []", section, got)
		}
	}
}

func TestExportCSV_NotesStaySingleLine(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "heidi")
	account := seedAccount(t, db, user.ID, "Main")
	category := seedCategory(t, db, user.ID, "Misc", models.TypeExpense)

	const key = "test-key"
	enc, err := util.EncryptAES(key, []byte("line one\nline two"))
	if err != nil {
		t.Fatalf("encrypt note: %v", err)
	}
	occurred := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	tx := models.Transaction{
		UserID:           user.ID,
		AccountID:        account.ID,
		CategoryID:       category.ID,
		Type:             models.TypeExpense,
		Amount:           12.50,
		Currency:         "USD",
		OriginalAmount:   12.50,
		OriginalCurrency: "USD",
		Note:             base64.StdEncoding.EncodeToString(enc),
		OccurredAt:       occurred,
		Month:            time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := db.Create(&tx).Error; err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	h := NewExportHandler(db, key)
	c, w := testCtx(t, http.MethodGet, "/api/export/csv", nil)
	c.Set("currentUser", user)
	c.Params = gin.Params{{Key: "format", Value: "csv"}}
	h.Export(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	body := w.Body.String()
	if !strings.Contains(body, "=== TRANSACTIONS ===") {
		t.Fatalf("transactions section missing:\n%s", body)
	}
	if !strings.Contains(body, "line one line two") {
		t.Errorf("note not flattened to one line:\n%s", body)
	}
	if strings.Contains(body, "line one\nline two") {
		t.Error("note newline survived into the csv output")
	}
}
