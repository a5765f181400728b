package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/avifenesh/expense-track-sub006/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errRequestResolved = errors.New("request already resolved")

// RequestHandler serves transaction requests between users: one user asks
// another to record a transaction, and the receiver approves or declines.
type RequestHandler struct {
	DB *gorm.DB
}

func NewRequestHandler(db *gorm.DB) *RequestHandler {
	return &RequestHandler{DB: db}
}

type requestCreateReq struct {
	ToUsername string  `json:"to_username" binding:"required"`
	CategoryID uint    `json:"category_id" binding:"required"`
	Type       string  `json:"type" binding:"required,oneof=income expense"`
	Amount     float64 `json:"amount" binding:"required"`
	Currency   string  `json:"currency"`
	Note       string  `json:"note" binding:"max=256"`
}

type requestResp struct {
	ID           uint    `json:"id"`
	FromUserID   uint    `json:"from_user_id"`
	FromUsername string  `json:"from_username,omitempty"`
	ToUserID     uint    `json:"to_user_id"`
	CategoryID   uint    `json:"category_id"`
	Type         string  `json:"type"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Note         string  `json:"note"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
}

func toRequestResp(r *models.TransactionRequest) requestResp {
	return requestResp{
		ID:         r.ID,
		FromUserID: r.FromUserID,
		ToUserID:   r.ToUserID,
		CategoryID: r.CategoryID,
		Type:       r.Type,
		Amount:     r.Amount,
		Currency:   r.Currency,
		Note:       r.Note,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
}

func (h *RequestHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req requestCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		util.FieldError(c, "amount", err.Error())
		return
	}
	if req.Currency == "" {
		req.Currency = user.PreferredCurrency
	}
	if err := util.ValidateCurrency(req.Currency); err != nil {
		util.FieldError(c, "currency", err.Error())
		return
	}

	var target models.User
	if err := h.DB.Where("LOWER(username) = LOWER(?)", strings.TrimSpace(req.ToUsername)).
		First(&target).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "target user not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load target user")
		}
		return
	}
	if target.ID == user.ID {
		util.FieldError(c, "to_username", "cannot send a request to yourself")
		return
	}

	// the category must belong to the receiver, who will own the resulting
	// transaction
	if _, err := ownedCategory(h.DB, target.ID, req.CategoryID); err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found for target user")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load category")
		}
		return
	}

	row := models.TransactionRequest{
		FromUserID: user.ID,
		ToUserID:   target.ID,
		CategoryID: req.CategoryID,
		Type:       req.Type,
		Amount:     util.RoundCents(req.Amount),
		Currency:   req.Currency,
		Note:       strings.TrimSpace(req.Note),
		Status:     models.RequestPending,
	}
	if err := h.DB.Create(&row).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create request")
		return
	}

	util.Success(c, util.Response{"request": toRequestResp(&row)})
}

// List returns requests addressed to the current user; direction=sent flips
// to requests the user created.
func (h *RequestHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	q := h.DB.Model(&models.TransactionRequest{})
	if c.Query("direction") == "sent" {
		q = q.Where("from_user_id = ?", user.ID)
	} else {
		q = q.Where("to_user_id = ?", user.ID)
	}
	if s := c.Query("status"); s == models.RequestPending ||
		s == models.RequestApproved || s == models.RequestDeclined {
		q = q.Where("status = ?", s)
	}

	var rows []models.TransactionRequest
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list requests")
		return
	}

	items := make([]requestResp, 0, len(rows))
	for i := range rows {
		items = append(items, toRequestResp(&rows[i]))
	}
	util.Success(c, util.Response{"requests": items})
}

type requestResolveReq struct {
	AccountID uint `json:"account_id"` // required on approve
}

// Approve flips a pending request to APPROVED and creates the backing
// transaction in the receiver's chosen account. The request row is re-read
// inside the database transaction so two concurrent approvals cannot both
// create a transaction.
func (h *RequestHandler) Approve(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var body requestResolveReq
	if err := c.ShouldBindJSON(&body); err != nil || body.AccountID == 0 {
		util.FieldError(c, "account_id", "account_id is required")
		return
	}

	account, err := ownedAccount(h.DB, user.ID, body.AccountID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load account")
		}
		return
	}

	var created models.Transaction
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var row models.TransactionRequest
		if err := tx.Where("id = ? AND to_user_id = ?", id, user.ID).
			First(&row).Error; err != nil {
			return err
		}
		if row.Status != models.RequestPending {
			return errRequestResolved
		}

		now := time.Now().UTC()
		created = models.Transaction{
			UserID:           user.ID,
			AccountID:        account.ID,
			CategoryID:       row.CategoryID,
			Type:             row.Type,
			Amount:           row.Amount,
			Currency:         row.Currency,
			OriginalAmount:   row.Amount,
			OriginalCurrency: row.Currency,
			OccurredAt:       now,
			Month:            models.MonthStart(now),
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		row.AccountID = account.ID
		row.Status = models.RequestApproved
		return tx.Save(&row).Error
	})
	if err != nil {
		switch {
		case err == gorm.ErrRecordNotFound:
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "request not found")
		case err == errRequestResolved:
			util.Error(c, http.StatusConflict, util.CodeConflict, "request already resolved")
		default:
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to approve request")
		}
		return
	}

	util.Success(c, util.Response{
		"message":        "request approved",
		"transaction_id": created.ID,
	})
}

// Decline flips a pending request to DECLINED.
func (h *RequestHandler) Decline(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var row models.TransactionRequest
		if err := tx.Where("id = ? AND to_user_id = ?", id, user.ID).
			First(&row).Error; err != nil {
			return err
		}
		if row.Status != models.RequestPending {
			return errRequestResolved
		}
		row.Status = models.RequestDeclined
		return tx.Save(&row).Error
	})
	if err != nil {
		switch {
		case err == gorm.ErrRecordNotFound:
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "request not found")
		case err == errRequestResolved:
			util.Error(c, http.StatusConflict, util.CodeConflict, "request already resolved")
		default:
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to decline request")
		}
		return
	}

	util.Success(c, util.Response{"message": "request declined"})
}
