package handler

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avifenesh/expense-track-sub006/internal/fx"
	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/avifenesh/expense-track-sub006/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TransactionHandler serves transaction CRUD. Amounts are converted into
// the account currency at write time; the original amount/currency pair is
// stored alongside. Notes are encrypted at rest.
type TransactionHandler struct {
	DB         *gorm.DB
	FX         *fx.Service
	EncryptKey string
	PageSize   int
}

func NewTransactionHandler(db *gorm.DB, fxs *fx.Service, encryptKey string, pageSize int) *TransactionHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &TransactionHandler{DB: db, FX: fxs, EncryptKey: encryptKey, PageSize: pageSize}
}

type transactionReq struct {
	AccountID  uint    `json:"account_id" binding:"required"`
	CategoryID uint    `json:"category_id" binding:"required"`
	Type       string  `json:"type" binding:"required,oneof=income expense"`
	Amount     float64 `json:"amount" binding:"required"`
	Currency   string  `json:"currency"`
	Note       string  `json:"note" binding:"max=256"`
	Date       string  `json:"date" binding:"required"`
}

type transactionResp struct {
	ID               uint    `json:"id"`
	AccountID        uint    `json:"account_id"`
	CategoryID       uint    `json:"category_id"`
	Type             string  `json:"type"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	OriginalAmount   float64 `json:"original_amount"`
	OriginalCurrency string  `json:"original_currency"`
	Note             string  `json:"note"`
	Date             string  `json:"date"`
	Month            string  `json:"month"`
	IsRecurring      bool    `json:"is_recurring"`
}

func (h *TransactionHandler) toResp(t *models.Transaction) transactionResp {
	return transactionResp{
		ID:               t.ID,
		AccountID:        t.AccountID,
		CategoryID:       t.CategoryID,
		Type:             t.Type,
		Amount:           t.Amount,
		Currency:         t.Currency,
		OriginalAmount:   t.OriginalAmount,
		OriginalCurrency: t.OriginalCurrency,
		Note:             h.decryptNote(t.Note),
		Date:             t.OccurredAt.Format("2006-01-02"),
		Month:            util.MonthKey(t.Month),
		IsRecurring:      t.IsRecurring,
	}
}

func (h *TransactionHandler) encryptNote(note string) (string, error) {
	if note == "" {
		return "", nil
	}
	raw, err := util.EncryptAES(h.EncryptKey, []byte(note))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// decryptNote degrades to empty on bad ciphertext rather than failing the
// whole listing.
func (h *TransactionHandler) decryptNote(stored string) string {
	if stored == "" {
		return ""
	}
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return ""
	}
	plain, err := util.DecryptAES(h.EncryptKey, raw)
	if err != nil {
		return ""
	}
	return string(plain)
}

func (h *TransactionHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	tx, ok := h.buildTransaction(c, user.ID, &req)
	if !ok {
		return
	}

	if err := h.DB.Create(tx).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create transaction")
		return
	}

	util.Success(c, util.Response{"transaction": h.toResp(tx)})
}

// buildTransaction validates the request and assembles the row, including
// currency conversion and note encryption. Writes the error response itself.
func (h *TransactionHandler) buildTransaction(c *gin.Context, userID uint, req *transactionReq) (*models.Transaction, bool) {
	if err := util.ValidateAmount(req.Amount); err != nil {
		util.FieldError(c, "amount", err.Error())
		return nil, false
	}
	if err := util.ValidateDate(req.Date); err != nil {
		util.FieldError(c, "date", err.Error())
		return nil, false
	}

	account, err := ownedAccount(h.DB, userID, req.AccountID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load account")
		}
		return nil, false
	}

	category, err := ownedCategory(h.DB, userID, req.CategoryID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load category")
		}
		return nil, false
	}
	if category.Type != req.Type {
		util.FieldError(c, "category_id", "category type does not match transaction type")
		return nil, false
	}
	if category.IsArchived {
		util.FieldError(c, "category_id", "category is archived")
		return nil, false
	}

	if req.Currency == "" {
		req.Currency = account.Currency
	}
	if err := util.ValidateCurrency(req.Currency); err != nil {
		util.FieldError(c, "currency", err.Error())
		return nil, false
	}

	occurredAt, _ := time.Parse("2006-01-02", req.Date)

	amount := req.Amount
	if req.Currency != account.Currency {
		amount = h.FX.Convert(c.Request.Context(), req.Amount, req.Currency, account.Currency)
	}

	note, err := h.encryptNote(strings.TrimSpace(req.Note))
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to encrypt note")
		return nil, false
	}

	return &models.Transaction{
		UserID:           userID,
		AccountID:        account.ID,
		CategoryID:       category.ID,
		Type:             req.Type,
		Amount:           util.RoundCents(amount),
		Currency:         account.Currency,
		OriginalAmount:   util.RoundCents(req.Amount),
		OriginalCurrency: req.Currency,
		Note:             note,
		OccurredAt:       occurredAt,
		Month:            models.MonthStart(occurredAt),
	}, true
}

func (h *TransactionHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	q := h.DB.Model(&models.Transaction{}).Where("user_id = ?", user.ID)

	if monthStr := c.Query("month"); monthStr != "" {
		month, err := util.ParseMonth(monthStr)
		if err != nil {
			util.FieldError(c, "month", err.Error())
			return
		}
		q = q.Where("month = ?", month)
	}
	if from := c.Query("from"); from != "" {
		if err := util.ValidateDate(from); err != nil {
			util.FieldError(c, "from", err.Error())
			return
		}
		t, _ := time.Parse("2006-01-02", from)
		q = q.Where("occurred_at >= ?", t)
	}
	if to := c.Query("to"); to != "" {
		if err := util.ValidateDate(to); err != nil {
			util.FieldError(c, "to", err.Error())
			return
		}
		t, _ := time.Parse("2006-01-02", to)
		q = q.Where("occurred_at < ?", t.AddDate(0, 0, 1)) // inclusive end date
	}
	if v := c.Query("account_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			util.FieldError(c, "account_id", "invalid account id")
			return
		}
		q = q.Where("account_id = ?", id)
	}
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			util.FieldError(c, "category_id", "invalid category id")
			return
		}
		q = q.Where("category_id = ?", id)
	}
	if t := c.Query("type"); t == models.TypeIncome || t == models.TypeExpense {
		q = q.Where("type = ?", t)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(h.PageSize)))
	if pageSize < 1 || pageSize > 100 {
		pageSize = h.PageSize
	}

	order := "occurred_at DESC, id DESC"
	if c.Query("sort") == "amount" {
		order = "amount DESC, id DESC"
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count transactions")
		return
	}

	var txs []models.Transaction
	if err := q.Order(order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&txs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list transactions")
		return
	}

	items := make([]transactionResp, 0, len(txs))
	for i := range txs {
		items = append(items, h.toResp(&txs[i]))
	}

	util.Success(c, util.Response{
		"transactions": items,
		"total":        total,
		"page":         page,
		"page_size":    pageSize,
	})
}

func (h *TransactionHandler) Get(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var tx models.Transaction
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&tx).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transaction")
		}
		return
	}

	util.Success(c, util.Response{"transaction": h.toResp(&tx)})
}

func (h *TransactionHandler) Update(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var existing models.Transaction
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transaction")
		}
		return
	}

	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	tx, ok := h.buildTransaction(c, user.ID, &req)
	if !ok {
		return
	}

	// recurring provenance survives edits
	tx.ID = existing.ID
	tx.IsRecurring = existing.IsRecurring
	tx.RecurringTemplateID = existing.RecurringTemplateID
	tx.CreatedAt = existing.CreatedAt

	if err := h.DB.Save(tx).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update transaction")
		return
	}

	util.Success(c, util.Response{"transaction": h.toResp(tx)})
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	res := h.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Transaction{})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete transaction")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
		return
	}

	util.Success(c, util.Response{"message": "transaction deleted"})
}
