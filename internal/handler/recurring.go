package handler

import (
	"net/http"
	"strings"

	"github.com/avifenesh/expense-track-sub006/internal/fx"
	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/avifenesh/expense-track-sub006/internal/recurring"
	"github.com/avifenesh/expense-track-sub006/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RecurringHandler serves recurring template CRUD and the per-month apply
// operation that materializes templates into transactions.
type RecurringHandler struct {
	DB *gorm.DB
	FX *fx.Service
}

func NewRecurringHandler(db *gorm.DB, fxs *fx.Service) *RecurringHandler {
	return &RecurringHandler{DB: db, FX: fxs}
}

type recurringReq struct {
	AccountID  uint    `json:"account_id" binding:"required"`
	CategoryID uint    `json:"category_id" binding:"required"`
	Type       string  `json:"type" binding:"required,oneof=income expense"`
	Name       string  `json:"name" binding:"required,max=64"`
	Amount     float64 `json:"amount" binding:"required"`
	Currency   string  `json:"currency"`
	DayOfMonth int     `json:"day_of_month" binding:"required,min=1,max=31"`
	StartMonth string  `json:"start_month" binding:"required"`
	EndMonth   string  `json:"end_month"`
}

type recurringResp struct {
	ID         uint    `json:"id"`
	AccountID  uint    `json:"account_id"`
	CategoryID uint    `json:"category_id"`
	Type       string  `json:"type"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	DayOfMonth int     `json:"day_of_month"`
	StartMonth string  `json:"start_month"`
	EndMonth   string  `json:"end_month,omitempty"`
	IsActive   bool    `json:"is_active"`
}

func toRecurringResp(t *models.RecurringTemplate) recurringResp {
	resp := recurringResp{
		ID:         t.ID,
		AccountID:  t.AccountID,
		CategoryID: t.CategoryID,
		Type:       t.Type,
		Name:       t.Name,
		Amount:     t.Amount,
		Currency:   t.Currency,
		DayOfMonth: t.DayOfMonth,
		StartMonth: util.MonthKey(t.StartMonth),
		IsActive:   t.IsActive,
	}
	if t.EndMonth != nil {
		resp.EndMonth = util.MonthKey(*t.EndMonth)
	}
	return resp
}

// validate parses months and checks ownership; writes the error response
// itself and returns ok=false on failure.
func (h *RecurringHandler) validate(c *gin.Context, userID uint, req *recurringReq) (*models.RecurringTemplate, bool) {
	if err := util.ValidateAmount(req.Amount); err != nil {
		util.FieldError(c, "amount", err.Error())
		return nil, false
	}
	start, err := util.ParseMonth(req.StartMonth)
	if err != nil {
		util.FieldError(c, "start_month", err.Error())
		return nil, false
	}
	tpl := models.RecurringTemplate{
		UserID:     userID,
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		Type:       req.Type,
		Name:       strings.TrimSpace(req.Name),
		Amount:     util.RoundCents(req.Amount),
		Currency:   req.Currency,
		DayOfMonth: req.DayOfMonth,
		StartMonth: start,
		IsActive:   true,
	}
	if req.EndMonth != "" {
		end, err := util.ParseMonth(req.EndMonth)
		if err != nil {
			util.FieldError(c, "end_month", err.Error())
			return nil, false
		}
		if end.Before(start) {
			util.FieldError(c, "end_month", "end month before start month")
			return nil, false
		}
		tpl.EndMonth = &end
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
	if tpl.Currency == "" {
		tpl.Currency = account.Currency
	}
	if err := util.ValidateCurrency(tpl.Currency); err != nil {
		util.FieldError(c, "currency", err.Error())
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
		util.FieldError(c, "category_id", "category type does not match template type")
		return nil, false
	}

	return &tpl, true
}

func (h *RecurringHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req recurringReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	tpl, ok := h.validate(c, user.ID, &req)
	if !ok {
		return
	}
	if err := h.DB.Create(tpl).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create template")
		return
	}

	util.Success(c, util.Response{"template": toRecurringResp(tpl)})
}

func (h *RecurringHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	q := h.DB.Where("user_id = ?", user.ID)
	if c.DefaultQuery("include_inactive", "false") != "true" {
		q = q.Where("is_active = ?", true)
	}

	var templates []models.RecurringTemplate
	if err := q.Order("id ASC").Find(&templates).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list templates")
		return
	}

	items := make([]recurringResp, 0, len(templates))
	for i := range templates {
		items = append(items, toRecurringResp(&templates[i]))
	}
	util.Success(c, util.Response{"templates": items})
}

func (h *RecurringHandler) Update(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var existing models.RecurringTemplate
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "template not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load template")
		}
		return
	}

	var req recurringReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	tpl, ok := h.validate(c, user.ID, &req)
	if !ok {
		return
	}
	tpl.ID = existing.ID
	tpl.IsActive = existing.IsActive
	tpl.CreatedAt = existing.CreatedAt

	if err := h.DB.Save(tpl).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update template")
		return
	}

	util.Success(c, util.Response{"template": toRecurringResp(tpl)})
}

// Deactivate stops future applies without touching already-created
// transactions.
func (h *RecurringHandler) Deactivate(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	res := h.DB.Model(&models.RecurringTemplate{}).
		Where("id = ? AND user_id = ?", id, user.ID).
		Update("is_active", false)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to deactivate template")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "template not found")
		return
	}

	util.Success(c, util.Response{"message": "template deactivated"})
}

type applyReq struct {
	Month string `json:"month" binding:"required"`
}

// Apply materializes all due templates into transactions for the given
// month. Applying twice is a no-op for templates that already produced a
// transaction in that month.
func (h *RecurringHandler) Apply(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req applyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	month, err := util.ParseMonth(req.Month)
	if err != nil {
		util.FieldError(c, "month", err.Error())
		return
	}

	var templates []models.RecurringTemplate
	if err := h.DB.Where("user_id = ?", user.ID).Find(&templates).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load templates")
		return
	}
	due := recurring.Due(templates, month)

	created, skipped := 0, 0
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var rows []models.Transaction
		for i := range due {
			tpl := &due[i]

			// idempotency: one transaction per template per month
			var exists int64
			if err := tx.Model(&models.Transaction{}).
				Where("recurring_template_id = ? AND month = ?", tpl.ID, month).
				Count(&exists).Error; err != nil {
				return err
			}
			if exists > 0 {
				skipped++
				continue
			}

			account, err := ownedAccount(tx, user.ID, tpl.AccountID)
			if err != nil {
				// account soft-deleted since the template was made
				skipped++
				continue
			}

			amount := tpl.Amount
			if tpl.Currency != account.Currency {
				amount = h.FX.Convert(c.Request.Context(), tpl.Amount, tpl.Currency, account.Currency)
			}

			tplID := tpl.ID
			rows = append(rows, models.Transaction{
				UserID:              user.ID,
				AccountID:           tpl.AccountID,
				CategoryID:          tpl.CategoryID,
				Type:                tpl.Type,
				Amount:              util.RoundCents(amount),
				Currency:            account.Currency,
				OriginalAmount:      tpl.Amount,
				OriginalCurrency:    tpl.Currency,
				OccurredAt:          recurring.OccurrenceDate(tpl.DayOfMonth, month),
				Month:               month,
				IsRecurring:         true,
				RecurringTemplateID: &tplID,
			})
		}

		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		created = len(rows)
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to apply templates")
		return
	}

	util.Success(c, util.Response{
		"month":   util.MonthKey(month),
		"created": created,
		"skipped": skipped,
	})
}
