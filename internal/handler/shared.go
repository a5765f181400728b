package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/avifenesh/expense-track-sub006/internal/sharing"
	"github.com/avifenesh/expense-track-sub006/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SharedHandler serves peer-to-peer expense sharing: splitting one
// transaction among participants and tracking who paid.
type SharedHandler struct {
	DB *gorm.DB
}

func NewSharedHandler(db *gorm.DB) *SharedHandler {
	return &SharedHandler{DB: db}
}

type sharedParticipantReq struct {
	Email       string  `json:"email" binding:"required,email"`
	Percentage  float64 `json:"percentage"`
	ShareAmount float64 `json:"share_amount"`
}

type sharedCreateReq struct {
	TransactionID uint                   `json:"transaction_id" binding:"required"`
	SplitType     string                 `json:"split_type" binding:"required,oneof=EQUAL PERCENTAGE FIXED"`
	Participants  []sharedParticipantReq `json:"participants" binding:"required,min=1,max=20,dive"`
}

type sharedParticipantResp struct {
	ID          uint    `json:"id"`
	Email       string  `json:"email"`
	UserID      *uint   `json:"user_id,omitempty"`
	ShareAmount float64 `json:"share_amount"`
	Percentage  float64 `json:"percentage,omitempty"`
	Status      string  `json:"status"`
}

type sharedResp struct {
	ID            uint                    `json:"id"`
	TransactionID uint                    `json:"transaction_id"`
	SplitType     string                  `json:"split_type"`
	TotalAmount   float64                 `json:"total_amount"`
	Currency      string                  `json:"currency"`
	CreatedAt     string                  `json:"created_at"`
	Participants  []sharedParticipantResp `json:"participants"`
}

func toSharedResp(e *models.SharedExpense) sharedResp {
	resp := sharedResp{
		ID:            e.ID,
		TransactionID: e.TransactionID,
		SplitType:     e.SplitType,
		TotalAmount:   e.TotalAmount,
		Currency:      e.Currency,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		Participants:  make([]sharedParticipantResp, 0, len(e.Participants)),
	}
	for i := range e.Participants {
		p := &e.Participants[i]
		resp.Participants = append(resp.Participants, sharedParticipantResp{
			ID:          p.ID,
			Email:       p.Email,
			UserID:      p.UserID,
			ShareAmount: p.ShareAmount,
			Percentage:  p.Percentage,
			Status:      p.Status,
		})
	}
	return resp
}

func (h *SharedHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req sharedCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var tx models.Transaction
	if err := h.DB.Where("id = ? AND user_id = ?", req.TransactionID, user.ID).
		First(&tx).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transaction")
		}
		return
	}
	if tx.Type != models.TypeExpense {
		util.FieldError(c, "transaction_id", "only expenses can be shared")
		return
	}

	participants := make([]sharing.Participant, 0, len(req.Participants))
	seen := make(map[string]bool, len(req.Participants))
	for _, p := range req.Participants {
		email := strings.ToLower(strings.TrimSpace(p.Email))
		if email == user.Email {
			util.FieldError(c, "participants", "owner cannot be a participant")
			return
		}
		if seen[email] {
			util.FieldError(c, "participants", "duplicate participant email")
			return
		}
		seen[email] = true
		participants = append(participants, sharing.Participant{
			Email:       email,
			Percentage:  p.Percentage,
			ShareAmount: p.ShareAmount,
		})
	}

	if req.SplitType == models.SplitFixed {
		if err := sharing.ValidateFixedShares(tx.Amount, participants); err != nil {
			util.FieldError(c, "participants", err.Error())
			return
		}
	}

	// registered users get their shares linked by id; unknown emails stay
	// email-only until they sign up
	emails := make([]string, 0, len(participants))
	for _, p := range participants {
		emails = append(emails, p.Email)
	}
	var known []models.User
	if err := h.DB.Where("email IN ?", emails).Find(&known).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to resolve participants")
		return
	}
	idByEmail := make(map[string]uint, len(known))
	validEmails := make(map[string]bool, len(known))
	for _, u := range known {
		idByEmail[u.Email] = u.ID
		validEmails[u.Email] = true
	}
	if req.SplitType != models.SplitPercentage {
		// EQUAL and FIXED splits accept unregistered emails too
		for _, p := range participants {
			validEmails[p.Email] = true
		}
	}

	shares := sharing.CalculateShares(req.SplitType, tx.Amount, participants, validEmails)
	if len(shares) == 0 {
		util.FieldError(c, "participants", "no valid participants for this split")
		return
	}

	expense := models.SharedExpense{
		UserID:        user.ID,
		TransactionID: tx.ID,
		SplitType:     req.SplitType,
		TotalAmount:   tx.Amount,
		Currency:      tx.Currency,
	}
	err := h.DB.Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Create(&expense).Error; err != nil {
			return err
		}
		for _, s := range shares {
			row := models.ExpenseParticipant{
				SharedExpenseID: expense.ID,
				Email:           s.Email,
				ShareAmount:     s.Amount,
				Percentage:      s.Percentage,
				Status:          models.ShareStatusPending,
			}
			if id, ok := idByEmail[s.Email]; ok {
				uid := id
				row.UserID = &uid
			}
			if err := dbtx.Create(&row).Error; err != nil {
				return err
			}
			expense.Participants = append(expense.Participants, row)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Error(c, http.StatusConflict, util.CodeConflict, "transaction is already shared")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create shared expense")
		return
	}

	util.Success(c, util.Response{"shared_expense": toSharedResp(&expense)})
}

// List returns shared expenses the user owns plus those they participate in.
func (h *SharedHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var rows []models.SharedExpense
	err := h.DB.Preload("Participants").
		Where("user_id = ?", user.ID).
		Or("id IN (?)", h.DB.Model(&models.ExpenseParticipant{}).
			Select("shared_expense_id").
			Where("user_id = ? OR email = ?", user.ID, user.Email)).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list shared expenses")
		return
	}

	items := make([]sharedResp, 0, len(rows))
	for i := range rows {
		items = append(items, toSharedResp(&rows[i]))
	}
	util.Success(c, util.Response{"shared_expenses": items})
}

type shareStatusReq struct {
	Status string `json:"status" binding:"required,oneof=PAID DECLINED"`
}

// UpdateParticipantStatus lets a participant mark their own share as PAID
// or DECLINED; the expense owner may do it on their behalf.
func (h *SharedHandler) UpdateParticipantStatus(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req shareStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var participant models.ExpenseParticipant
	if err := h.DB.First(&participant, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "participant not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load participant")
		}
		return
	}

	var expense models.SharedExpense
	if err := h.DB.First(&expense, participant.SharedExpenseID).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load shared expense")
		return
	}

	isSelf := (participant.UserID != nil && *participant.UserID == user.ID) ||
		participant.Email == user.Email
	isOwner := expense.UserID == user.ID
	if !isSelf && !isOwner {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "not your share")
		return
	}

	if err := h.DB.Model(&participant).Update("status", req.Status).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update share status")
		return
	}

	util.Success(c, util.Response{"message": "share status updated"})
}

// Balances aggregates settlement positions across all shared expenses the
// user owns or participates in.
func (h *SharedHandler) Balances(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var rows []models.SharedExpense
	err := h.DB.Preload("Participants").
		Where("user_id = ?", user.ID).
		Or("id IN (?)", h.DB.Model(&models.ExpenseParticipant{}).
			Select("shared_expense_id").
			Where("user_id = ? OR email = ?", user.ID, user.Email)).
		Find(&rows).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list shared expenses")
		return
	}

	// owner emails are loaded in one query
	ownerIDs := make([]uint, 0, len(rows))
	for i := range rows {
		ownerIDs = append(ownerIDs, rows[i].UserID)
	}
	var owners []models.User
	if len(ownerIDs) > 0 {
		if err := h.DB.Where("id IN ?", ownerIDs).Find(&owners).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load owners")
			return
		}
	}
	emailByID := make(map[uint]string, len(owners))
	for _, o := range owners {
		emailByID[o.ID] = o.Email
	}

	expenses := make([]sharing.Expense, 0, len(rows))
	for i := range rows {
		e := sharing.Expense{OwnerEmail: emailByID[rows[i].UserID]}
		for _, p := range rows[i].Participants {
			e.Participants = append(e.Participants, sharing.ParticipantShare{
				Email:  p.Email,
				Amount: p.ShareAmount,
				Status: p.Status,
			})
		}
		expenses = append(expenses, e)
	}

	util.Success(c, util.Response{"balances": sharing.Balances(expenses)})
}
