package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/avifenesh/expense-track-sub006/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ProfileHandler serves the current user's profile, password changes,
// subscription state and the full account deletion.
type ProfileHandler struct {
	DB         *gorm.DB
	BcryptCost int
}

func NewProfileHandler(db *gorm.DB, bcryptCost int) *ProfileHandler {
	return &ProfileHandler{DB: db, BcryptCost: normalizeBcryptCost(bcryptCost)}
}

func (h *ProfileHandler) GetMe(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var sub models.Subscription
	subInfo := gin.H{"plan": "", "status": "", "active": false}
	if err := h.DB.Where("user_id = ?", user.ID).First(&sub).Error; err == nil {
		subInfo = gin.H{
			"plan":               sub.Plan,
			"status":             sub.Status,
			"active":             sub.IsActive(time.Now()),
			"current_period_end": sub.CurrentPeriodEnd.Format(time.RFC3339),
		}
	}

	util.Success(c, util.Response{
		"user": gin.H{
			"id":           user.ID,
			"username":     user.Username,
			"email":        user.Email,
			"display_name": user.DisplayName,
			"currency":     user.PreferredCurrency,
			"created_at":   user.CreatedAt.Format(time.RFC3339),
		},
		"subscription": subInfo,
	})
}

type profileUpdateReq struct {
	DisplayName string `json:"display_name" binding:"max=64"`
	Currency    string `json:"currency"`
}

func (h *ProfileHandler) Update(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req profileUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	updates := map[string]interface{}{
		"display_name": strings.TrimSpace(req.DisplayName),
	}
	if req.Currency != "" {
		if err := util.ValidateCurrency(req.Currency); err != nil {
			util.FieldError(c, "currency", err.Error())
			return
		}
		updates["preferred_currency"] = req.Currency
	}

	if err := h.DB.Model(user).Updates(updates).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update profile")
		return
	}

	util.Success(c, util.Response{"message": "profile updated"})
}

type changePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req changePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	if err := bcrypt.CompareHashAndPassword(
		[]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "wrong password")
		return
	}
	if !isStrongPassword(req.NewPassword) {
		util.FieldError(c, "new_password", "must be 8-32 chars with upper, lower and digit")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
		return
	}
	if err := h.DB.Model(user).Update("password_hash", string(hash)).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to change password")
		return
	}

	util.Success(c, util.Response{"message": "password changed"})
}

type deleteAccountReq struct {
	Password string `json:"password" binding:"required"`
	Confirm  string `json:"confirm" binding:"required"` // must be "DELETE"
}

// Delete removes the user and every row they own in one database
// transaction. This is the hard delete behind the data-erasure request;
// there is no undo.
func (h *ProfileHandler) Delete(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req deleteAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if req.Confirm != "DELETE" {
		util.FieldError(c, "confirm", `type "DELETE" to confirm`)
		return
	}
	if err := bcrypt.CompareHashAndPassword(
		[]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "wrong password")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		uid := user.ID

		var expenseIDs []uint
		if err := tx.Model(&models.SharedExpense{}).
			Where("user_id = ?", uid).
			Pluck("id", &expenseIDs).Error; err != nil {
			return err
		}
		if len(expenseIDs) > 0 {
			if err := tx.Where("shared_expense_id IN ?", expenseIDs).
				Delete(&models.ExpenseParticipant{}).Error; err != nil {
				return err
			}
		}
		// shares of this user in other people's expenses
		if err := tx.Where("user_id = ? OR email = ?", uid, user.Email).
			Delete(&models.ExpenseParticipant{}).Error; err != nil {
			return err
		}

		for _, model := range []interface{}{
			&models.SharedExpense{},
			&models.Holding{},
			&models.RecurringTemplate{},
			&models.Budget{},
			&models.Transaction{},
			&models.Category{},
			&models.Subscription{},
			&models.AuditLog{},
		} {
			if err := tx.Where("user_id = ?", uid).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("from_user_id = ? OR to_user_id = ?", uid, uid).
			Delete(&models.TransactionRequest{}).Error; err != nil {
			return err
		}
		// accounts are hard-deleted here, soft-deleted ones included
		if err := tx.Where("user_id = ?", uid).
			Delete(&models.Account{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, uid).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete account")
		return
	}

	util.Success(c, util.Response{"message": "account deleted"})
}

// AuditList returns the user's recent audit trail, newest first.
func (h *ProfileHandler) AuditList(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var logs []models.AuditLog
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(100).
		Find(&logs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list audit logs")
		return
	}

	items := make([]gin.H, 0, len(logs))
	for _, l := range logs {
		items = append(items, gin.H{
			"request_id": l.RequestID,
			"method":     l.Method,
			"path":       l.Path,
			"ip":         l.IP,
			"user_agent": l.UserAgent,
			"at":         l.CreatedAt.Format(time.RFC3339),
		})
	}
	util.Success(c, util.Response{"audit_logs": items})
}

type subscribeReq struct {
	Plan string `json:"plan" binding:"required,oneof=monthly yearly"`
}

// Subscribe switches the user to a paid plan and extends the period from
// now (payment processing is out of scope; the plan flip is immediate).
func (h *ProfileHandler) Subscribe(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req subscribeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	now := time.Now().UTC()
	periodEnd := now.AddDate(0, 1, 0)
	if req.Plan == models.PlanYearly {
		periodEnd = now.AddDate(1, 0, 0)
	}

	var sub models.Subscription
	err := h.DB.Where("user_id = ?", user.ID).First(&sub).Error
	switch err {
	case nil:
		sub.Plan = req.Plan
		sub.Status = models.SubActive
		sub.CurrentPeriodEnd = periodEnd
		err = h.DB.Save(&sub).Error
	case gorm.ErrRecordNotFound:
		sub = models.Subscription{
			UserID:           user.ID,
			Plan:             req.Plan,
			Status:           models.SubActive,
			CurrentPeriodEnd: periodEnd,
		}
		err = h.DB.Create(&sub).Error
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update subscription")
		return
	}

	util.Success(c, util.Response{
		"subscription": gin.H{
			"plan":               sub.Plan,
			"status":             sub.Status,
			"current_period_end": sub.CurrentPeriodEnd.Format(time.RFC3339),
		},
	})
}

// Cancel marks the subscription cancelled, ending premium access.
func (h *ProfileHandler) Cancel(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	res := h.DB.Model(&models.Subscription{}).
		Where("user_id = ? AND status = ?", user.ID, models.SubActive).
		Update("status", models.SubCancelled)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to cancel subscription")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "no active subscription")
		return
	}

	util.Success(c, util.Response{"message": "subscription cancelled"})
}
