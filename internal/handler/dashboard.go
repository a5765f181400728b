package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/avifenesh/expense-track-sub006/internal/fx"
	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/avifenesh/expense-track-sub006/internal/stats"
	"github.com/avifenesh/expense-track-sub006/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// DashboardHandler serves the monthly aggregation view. The independent
// queries fan out concurrently; the pure aggregation lives in the stats
// package.
type DashboardHandler struct {
	DB *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{DB: db}
}

func (h *DashboardHandler) Get(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	month := models.MonthStart(time.Now().UTC())
	if monthStr := c.Query("month"); monthStr != "" {
		m, err := util.ParseMonth(monthStr)
		if err != nil {
			util.FieldError(c, "month", err.Error())
			return
		}
		month = m
	}

	var accountID *uint
	if v := c.Query("account_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			util.FieldError(c, "account_id", "invalid account id")
			return
		}
		if _, err := ownedAccount(h.DB, user.ID, uint(id)); err != nil {
			if err == gorm.ErrRecordNotFound {
				util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load account")
			}
			return
		}
		uid := uint(id)
		accountID = &uid
	}

	scoped := func(q *gorm.DB) *gorm.DB {
		if accountID != nil {
			return q.Where("account_id = ?", *accountID)
		}
		return q
	}

	prevMonth := month.AddDate(0, -1, 0)
	historyStart := month.AddDate(0, -(stats.HistoryMonths - 1), 0)

	in := stats.Input{Month: month, AccountID: accountID}
	var rateRows []models.ExchangeRate

	g, gctx := errgroup.WithContext(c.Request.Context())
	db := h.DB.WithContext(gctx)

	g.Go(func() error {
		return db.Where("user_id = ?", user.ID).Find(&in.Categories).Error
	})
	g.Go(func() error {
		return db.Where("user_id = ? AND month = ?", user.ID, month).
			Find(&in.Budgets).Error
	})
	g.Go(func() error {
		return scoped(db.Where("user_id = ? AND month = ?", user.ID, month)).
			Find(&in.Transactions).Error
	})
	g.Go(func() error {
		return scoped(db.Where("user_id = ? AND month = ?", user.ID, prevMonth)).
			Find(&in.PrevTransactions).Error
	})
	g.Go(func() error {
		return scoped(db.Where("user_id = ? AND month >= ? AND month <= ?",
			user.ID, historyStart, month)).
			Find(&in.History).Error
	})
	g.Go(func() error {
		var n int64
		err := db.Model(&models.TransactionRequest{}).
			Where("to_user_id = ? AND status = ?", user.ID, models.RequestPending).
			Count(&n).Error
		in.PendingRequests = int(n)
		return err
	})
	g.Go(func() error {
		var n int64
		err := db.Model(&models.RecurringTemplate{}).
			Where("user_id = ? AND is_active = ?", user.ID, true).
			Count(&n).Error
		in.ActiveTemplates = int(n)
		return err
	})
	g.Go(func() error {
		return db.Find(&rateRows).Error
	})

	if err := g.Wait(); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load dashboard data")
		return
	}

	cache := fx.NewCache(rateRows)
	in.Convert = func(amount float64, cur string) float64 {
		return cache.Convert(amount, cur, user.PreferredCurrency)
	}

	dashboard := stats.Build(in)

	util.Success(c, util.Response{
		"dashboard": dashboard,
		"currency":  user.PreferredCurrency,
	})
}
