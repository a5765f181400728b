package handler

import (
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/avifenesh/expense-track-sub006/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler serves the full-account data export in JSON, CSV and XLSX.
type ExportHandler struct {
	DB         *gorm.DB
	EncryptKey string
}

func NewExportHandler(db *gorm.DB, encryptKey string) *ExportHandler {
	return &ExportHandler{DB: db, EncryptKey: encryptKey}
}

// exportBundle is everything a user can take with them. Slices are
// initialized so empty sections serialize as [] rather than null.
type exportBundle struct {
	ExportedAt string `json:"exported_at"`

	User struct {
		Username          string `json:"username"`
		Email             string `json:"email"`
		DisplayName       string `json:"display_name"`
		PreferredCurrency string `json:"preferred_currency"`
		CreatedAt         string `json:"created_at"`
	} `json:"user"`

	Subscription struct {
		Plan             string `json:"plan"`
		Status           string `json:"status"`
		CurrentPeriodEnd string `json:"current_period_end"`
	} `json:"subscription"`

	Accounts     []accountResp          `json:"accounts"`
	Categories   []categoryResp         `json:"categories"`
	Transactions []transactionResp      `json:"transactions"`
	Budgets      []budgetResp           `json:"budgets"`
	Recurring    []recurringResp        `json:"recurring_templates"`
	Holdings     []holdingResp          `json:"holdings"`
	Shared       []sharedResp           `json:"shared_expenses"`
	Requests     []requestResp          `json:"transaction_requests"`
}

func (h *ExportHandler) decryptNote(stored string) string {
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

func (h *ExportHandler) collect(user *models.User) (*exportBundle, error) {
	bundle := &exportBundle{
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
		Accounts:     []accountResp{},
		Categories:   []categoryResp{},
		Transactions: []transactionResp{},
		Budgets:      []budgetResp{},
		Recurring:    []recurringResp{},
		Holdings:     []holdingResp{},
		Shared:       []sharedResp{},
		Requests:     []requestResp{},
	}
	bundle.User.Username = user.Username
	bundle.User.Email = user.Email
	bundle.User.DisplayName = user.DisplayName
	bundle.User.PreferredCurrency = user.PreferredCurrency
	bundle.User.CreatedAt = user.CreatedAt.Format(time.RFC3339)

	var sub models.Subscription
	if err := h.DB.Where("user_id = ?", user.ID).First(&sub).Error; err == nil {
		bundle.Subscription.Plan = sub.Plan
		bundle.Subscription.Status = sub.Status
		bundle.Subscription.CurrentPeriodEnd = sub.CurrentPeriodEnd.Format(time.RFC3339)
	}

	var accounts []models.Account
	if err := h.DB.Where("user_id = ?", user.ID).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	for i := range accounts {
		bundle.Accounts = append(bundle.Accounts, toAccountResp(&accounts[i]))
	}

	var categories []models.Category
	if err := h.DB.Where("user_id = ?", user.ID).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	for i := range categories {
		bundle.Categories = append(bundle.Categories, toCategoryResp(&categories[i]))
	}

	var txs []models.Transaction
	if err := h.DB.Where("user_id = ?", user.ID).Order("occurred_at ASC, id ASC").Find(&txs).Error; err != nil {
		return nil, err
	}
	for i := range txs {
		t := &txs[i]
		bundle.Transactions = append(bundle.Transactions, transactionResp{
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
		})
	}

	var budgets []models.Budget
	if err := h.DB.Where("user_id = ?", user.ID).Order("month ASC, id ASC").Find(&budgets).Error; err != nil {
		return nil, err
	}
	for i := range budgets {
		bundle.Budgets = append(bundle.Budgets, toBudgetResp(&budgets[i]))
	}

	var templates []models.RecurringTemplate
	if err := h.DB.Where("user_id = ?", user.ID).Order("id ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	for i := range templates {
		bundle.Recurring = append(bundle.Recurring, toRecurringResp(&templates[i]))
	}

	var holdingRows []models.Holding
	if err := h.DB.Where("user_id = ?", user.ID).Order("symbol ASC").Find(&holdingRows).Error; err != nil {
		return nil, err
	}
	for i := range holdingRows {
		bundle.Holdings = append(bundle.Holdings, toHoldingResp(&holdingRows[i]))
	}

	var shared []models.SharedExpense
	if err := h.DB.Preload("Participants").Where("user_id = ?", user.ID).
		Order("id ASC").Find(&shared).Error; err != nil {
		return nil, err
	}
	for i := range shared {
		bundle.Shared = append(bundle.Shared, toSharedResp(&shared[i]))
	}

	var requests []models.TransactionRequest
	if err := h.DB.Where("from_user_id = ? OR to_user_id = ?", user.ID, user.ID).
		Order("id ASC").Find(&requests).Error; err != nil {
		return nil, err
	}
	for i := range requests {
		bundle.Requests = append(bundle.Requests, toRequestResp(&requests[i]))
	}

	return bundle, nil
}

// Export serves the bundle in the format named by the path,
// /api/export/{json,csv,xlsx}.
func (h *ExportHandler) Export(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	bundle, err := h.collect(user)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to collect export data")
		return
	}

	stamp := time.Now().UTC().Format("20060102")
	switch c.Param("format") {
	case "json":
		c.Header("Content-Disposition",
			fmt.Sprintf("attachment; filename=export-%s.json", stamp))
		c.JSON(http.StatusOK, bundle)
	case "csv":
		h.writeCSV(c, bundle, stamp)
	case "xlsx":
		h.writeXLSX(c, bundle, stamp)
	default:
		util.FieldError(c, "format", "format must be json, csv or xlsx")
	}
}

// csvSection is one titled table of the multi-section CSV export.
type csvSection struct {
	title  string
	header []string
	rows   [][]string
}

func (h *ExportHandler) sections(bundle *exportBundle) []csvSection {
	f2 := func(v float64) string { return fmt.Sprintf("%.2f", v) }

	accounts := csvSection{
		title:  "ACCOUNTS",
		header: []string{"id", "name", "currency"},
	}
	for _, a := range bundle.Accounts {
		accounts.rows = append(accounts.rows, []string{
			fmt.Sprint(a.ID), a.Name, a.Currency,
		})
	}

	categories := csvSection{
		title:  "CATEGORIES",
		header: []string{"id", "name", "type", "archived", "holding"},
	}
	for _, cat := range bundle.Categories {
		categories.rows = append(categories.rows, []string{
			fmt.Sprint(cat.ID), cat.Name, cat.Type,
			fmt.Sprint(cat.IsArchived), fmt.Sprint(cat.IsHolding),
		})
	}

	transactions := csvSection{
		title: "TRANSACTIONS",
		header: []string{"id", "date", "type", "amount", "currency",
			"original_amount", "original_currency", "account_id",
			"category_id", "note", "recurring"},
	}
	for _, t := range bundle.Transactions {
		transactions.rows = append(transactions.rows, []string{
			fmt.Sprint(t.ID), t.Date, t.Type, f2(t.Amount), t.Currency,
			f2(t.OriginalAmount), t.OriginalCurrency,
			fmt.Sprint(t.AccountID), fmt.Sprint(t.CategoryID),
			t.Note, fmt.Sprint(t.IsRecurring),
		})
	}

	budgets := csvSection{
		title:  "BUDGETS",
		header: []string{"id", "month", "account_id", "category_id", "planned"},
	}
	for _, b := range bundle.Budgets {
		budgets.rows = append(budgets.rows, []string{
			fmt.Sprint(b.ID), b.Month, fmt.Sprint(b.AccountID),
			fmt.Sprint(b.CategoryID), f2(b.Planned),
		})
	}

	recurring := csvSection{
		title: "RECURRING_TEMPLATES",
		header: []string{"id", "name", "type", "amount", "currency",
			"day_of_month", "start_month", "end_month", "active"},
	}
	for _, r := range bundle.Recurring {
		recurring.rows = append(recurring.rows, []string{
			fmt.Sprint(r.ID), r.Name, r.Type, f2(r.Amount), r.Currency,
			fmt.Sprint(r.DayOfMonth), r.StartMonth, r.EndMonth,
			fmt.Sprint(r.IsActive),
		})
	}

	holdingSection := csvSection{
		title: "HOLDINGS",
		header: []string{"id", "account_id", "symbol", "quantity",
			"average_cost", "currency"},
	}
	for _, hd := range bundle.Holdings {
		holdingSection.rows = append(holdingSection.rows, []string{
			fmt.Sprint(hd.ID), fmt.Sprint(hd.AccountID), hd.Symbol,
			fmt.Sprintf("%.6f", hd.Quantity), f2(hd.AverageCost), hd.Currency,
		})
	}

	shared := csvSection{
		title: "SHARED_EXPENSES",
		header: []string{"id", "transaction_id", "split_type",
			"total_amount", "currency", "participant_email",
			"share_amount", "status"},
	}
	for _, e := range bundle.Shared {
		for _, p := range e.Participants {
			shared.rows = append(shared.rows, []string{
				fmt.Sprint(e.ID), fmt.Sprint(e.TransactionID), e.SplitType,
				f2(e.TotalAmount), e.Currency, p.Email,
				f2(p.ShareAmount), p.Status,
			})
		}
	}

	return []csvSection{accounts, categories, transactions, budgets,
		recurring, holdingSection, shared}
}

// flattenCell keeps every value single-line: the csv writer would quote a
// newline but leave it inside the field, breaking line-oriented consumers.
func flattenCell(v string) string {
	v = strings.ReplaceAll(v, "\r\n", " ")
	v = strings.ReplaceAll(v, "\n", " ")
	return strings.ReplaceAll(v, "\r", " ")
}

func (h *ExportHandler) writeCSV(c *gin.Context, bundle *exportBundle, stamp string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=export-%s.csv", stamp))

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	for _, sec := range h.sections(bundle) {
		_ = w.Write([]string{fmt.Sprintf("=== %s ===", sec.title)})
		_ = w.Write(sec.header)
		for _, row := range sec.rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = flattenCell(v)
			}
			_ = w.Write(cells)
		}
		_ = w.Write([]string{})
	}
	w.Flush()

	c.String(http.StatusOK, sb.String())
}

func (h *ExportHandler) writeXLSX(c *gin.Context, bundle *exportBundle, stamp string) {
	f := excelize.NewFile()
	defer f.Close()

	for i, sec := range h.sections(bundle) {
		sheet := sec.title
		if i == 0 {
			// the default sheet becomes the first section
			_ = f.SetSheetName("Sheet1", sheet)
		} else {
			_, _ = f.NewSheet(sheet)
		}

		cells := make([]interface{}, len(sec.header))
		for j, head := range sec.header {
			cells[j] = head
		}
		_ = f.SetSheetRow(sheet, "A1", &cells)

		for rowIdx, row := range sec.rows {
			cells := make([]interface{}, len(row))
			for j, v := range row {
				cells[j] = v
			}
			addr := fmt.Sprintf("A%d", rowIdx+2)
			_ = f.SetSheetRow(sheet, addr, &cells)
		}
	}

	c.Header("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=export-%s.xlsx", stamp))
	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to write workbook")
	}
}
