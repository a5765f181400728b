package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/avifenesh/expense-track-sub006/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AccountHandler serves account CRUD.
type AccountHandler struct {
	DB *gorm.DB
}

func NewAccountHandler(db *gorm.DB) *AccountHandler {
	return &AccountHandler{DB: db}
}

type accountReq struct {
	Name     string `json:"name" binding:"required,max=64"`
	Currency string `json:"currency"`
}

type accountResp struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

func toAccountResp(a *models.Account) accountResp {
	return accountResp{ID: a.ID, Name: a.Name, Currency: a.Currency}
}

func (h *AccountHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req accountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.FieldError(c, "name", "name is required")
		return
	}
	if req.Currency == "" {
		req.Currency = user.PreferredCurrency
	}
	if err := util.ValidateCurrency(req.Currency); err != nil {
		util.FieldError(c, "currency", err.Error())
		return
	}

	account := models.Account{
		UserID:   user.ID,
		Name:     req.Name,
		Currency: req.Currency,
	}
	if err := h.DB.Create(&account).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create account")
		return
	}

	util.Success(c, util.Response{"account": toAccountResp(&account)})
}

func (h *AccountHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var accounts []models.Account
	if err := activeAccounts(h.DB, user.ID).Order("id ASC").Find(&accounts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list accounts")
		return
	}

	items := make([]accountResp, 0, len(accounts))
	for i := range accounts {
		items = append(items, toAccountResp(&accounts[i]))
	}
	util.Success(c, util.Response{"accounts": items})
}

func (h *AccountHandler) Update(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req accountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	account, err := ownedAccount(h.DB, user.ID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load account")
		}
		return
	}

	account.Name = req.Name
	if req.Currency != "" {
		if err := util.ValidateCurrency(req.Currency); err != nil {
			util.FieldError(c, "currency", err.Error())
			return
		}
		account.Currency = req.Currency
	}
	if err := h.DB.Save(account).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update account")
		return
	}

	util.Success(c, util.Response{"account": toAccountResp(account)})
}

// Delete soft-deletes an account. A user must keep at least one active
// account, so deleting the last one is rejected.
func (h *AccountHandler) Delete(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	if _, err := ownedAccount(h.DB, user.ID, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load account")
		}
		return
	}

	var active int64
	if err := activeAccounts(h.DB, user.ID).Count(&active).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count accounts")
		return
	}
	if active <= 1 {
		util.Error(c, http.StatusConflict, util.CodeConflict, "cannot delete the last account")
		return
	}

	now := time.Now().UTC()
	deletedBy := user.ID
	if err := h.DB.Model(&models.Account{}).
		Where("id = ? AND user_id = ? AND deleted_at IS NULL", id, user.ID).
		Updates(map[string]interface{}{
			"deleted_at": now,
			"deleted_by": deletedBy,
		}).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete account")
		return
	}

	util.Success(c, util.Response{"message": "account deleted"})
}
