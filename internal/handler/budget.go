package handler

import (
	"net/http"

	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/avifenesh/expense-track-sub006/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BudgetHandler serves monthly budget upserts and listings. A budget is
// keyed by (account, category, month); setting it again overwrites the
// planned amount.
type BudgetHandler struct {
	DB *gorm.DB
}

func NewBudgetHandler(db *gorm.DB) *BudgetHandler {
	return &BudgetHandler{DB: db}
}

type budgetReq struct {
	AccountID  uint    `json:"account_id" binding:"required"`
	CategoryID uint    `json:"category_id" binding:"required"`
	Month      string  `json:"month" binding:"required"`
	Planned    float64 `json:"planned" binding:"required"`
}

type budgetResp struct {
	ID         uint    `json:"id"`
	AccountID  uint    `json:"account_id"`
	CategoryID uint    `json:"category_id"`
	Month      string  `json:"month"`
	Planned    float64 `json:"planned"`
}

func toBudgetResp(b *models.Budget) budgetResp {
	return budgetResp{
		ID:         b.ID,
		AccountID:  b.AccountID,
		CategoryID: b.CategoryID,
		Month:      util.MonthKey(b.Month),
		Planned:    b.Planned,
	}
}

func (h *BudgetHandler) Upsert(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req budgetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if err := util.ValidateAmount(req.Planned); err != nil {
		util.FieldError(c, "planned", err.Error())
		return
	}
	month, err := util.ParseMonth(req.Month)
	if err != nil {
		util.FieldError(c, "month", err.Error())
		return
	}

	if _, err := ownedAccount(h.DB, user.ID, req.AccountID); err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load account")
		}
		return
	}
	if _, err := ownedCategory(h.DB, user.ID, req.CategoryID); err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load category")
		}
		return
	}

	budget := models.Budget{
		UserID:     user.ID,
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		Month:      month,
		Planned:    util.RoundCents(req.Planned),
	}
	if err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "category_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"planned", "updated_at"}),
	}).Create(&budget).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save budget")
		return
	}

	util.Success(c, util.Response{"budget": toBudgetResp(&budget)})
}

func (h *BudgetHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	q := h.DB.Model(&models.Budget{}).Where("user_id = ?", user.ID)
	if monthStr := c.Query("month"); monthStr != "" {
		month, err := util.ParseMonth(monthStr)
		if err != nil {
			util.FieldError(c, "month", err.Error())
			return
		}
		q = q.Where("month = ?", month)
	}
	if v := c.Query("account_id"); v != "" {
		q = q.Where("account_id = ?", v)
	}

	var budgets []models.Budget
	if err := q.Order("month DESC, category_id ASC").Find(&budgets).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list budgets")
		return
	}

	items := make([]budgetResp, 0, len(budgets))
	for i := range budgets {
		items = append(items, toBudgetResp(&budgets[i]))
	}
	util.Success(c, util.Response{"budgets": items})
}

func (h *BudgetHandler) Delete(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	res := h.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Budget{})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete budget")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "budget not found")
		return
	}

	util.Success(c, util.Response{"message": "budget deleted"})
}
