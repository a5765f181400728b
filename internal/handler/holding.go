package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/avifenesh/expense-track-sub006/internal/fx"
	"github.com/avifenesh/expense-track-sub006/internal/holdings"
	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/avifenesh/expense-track-sub006/internal/quotes"
	"github.com/avifenesh/expense-track-sub006/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// HoldingHandler serves investment position CRUD and the priced portfolio
// view.
type HoldingHandler struct {
	DB     *gorm.DB
	Quotes *quotes.Service
	FX     *fx.Service
}

func NewHoldingHandler(db *gorm.DB, qs *quotes.Service, fxs *fx.Service) *HoldingHandler {
	return &HoldingHandler{DB: db, Quotes: qs, FX: fxs}
}

type holdingReq struct {
	AccountID   uint    `json:"account_id" binding:"required"`
	CategoryID  uint    `json:"category_id" binding:"required"`
	Symbol      string  `json:"symbol" binding:"required,max=16"`
	Quantity    float64 `json:"quantity" binding:"required"`
	AverageCost float64 `json:"average_cost" binding:"required"`
	Currency    string  `json:"currency"`
}

type holdingResp struct {
	ID          uint    `json:"id"`
	AccountID   uint    `json:"account_id"`
	CategoryID  uint    `json:"category_id"`
	Symbol      string  `json:"symbol"`
	Quantity    float64 `json:"quantity"`
	AverageCost float64 `json:"average_cost"`
	Currency    string  `json:"currency"`
}

func toHoldingResp(hd *models.Holding) holdingResp {
	return holdingResp{
		ID:          hd.ID,
		AccountID:   hd.AccountID,
		CategoryID:  hd.CategoryID,
		Symbol:      hd.Symbol,
		Quantity:    hd.Quantity,
		AverageCost: hd.AverageCost,
		Currency:    hd.Currency,
	}
}

func (h *HoldingHandler) validate(c *gin.Context, userID uint, req *holdingReq) (*models.Holding, bool) {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Symbol == "" {
		util.FieldError(c, "symbol", "symbol is required")
		return nil, false
	}
	if req.Quantity <= 0 {
		util.FieldError(c, "quantity", "quantity must be positive")
		return nil, false
	}
	if req.AverageCost <= 0 {
		util.FieldError(c, "average_cost", "average cost must be positive")
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
	if !category.IsHolding {
		util.FieldError(c, "category_id", "category is not a holding category")
		return nil, false
	}

	if req.Currency == "" {
		req.Currency = account.Currency
	}
	if err := util.ValidateCurrency(req.Currency); err != nil {
		util.FieldError(c, "currency", err.Error())
		return nil, false
	}

	return &models.Holding{
		UserID:      userID,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Symbol:      req.Symbol,
		Quantity:    util.RoundQuantity(req.Quantity),
		AverageCost: util.RoundCents(req.AverageCost),
		Currency:    req.Currency,
	}, true
}

func (h *HoldingHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req holdingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	holding, ok := h.validate(c, user.ID, &req)
	if !ok {
		return
	}
	if err := h.DB.Create(holding).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Error(c, http.StatusConflict, util.CodeConflict, "symbol already held in this account")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create holding")
		return
	}

	util.Success(c, util.Response{"holding": toHoldingResp(holding)})
}

func (h *HoldingHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var rows []models.Holding
	if err := h.DB.Where("user_id = ?", user.ID).Order("symbol ASC").Find(&rows).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list holdings")
		return
	}

	items := make([]holdingResp, 0, len(rows))
	for i := range rows {
		items = append(items, toHoldingResp(&rows[i]))
	}
	util.Success(c, util.Response{"holdings": items})
}

func (h *HoldingHandler) Update(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var existing models.Holding
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "holding not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load holding")
		}
		return
	}

	var req holdingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	holding, ok := h.validate(c, user.ID, &req)
	if !ok {
		return
	}
	holding.ID = existing.ID
	holding.CreatedAt = existing.CreatedAt

	if err := h.DB.Save(holding).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Error(c, http.StatusConflict, util.CodeConflict, "symbol already held in this account")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update holding")
		return
	}

	util.Success(c, util.Response{"holding": toHoldingResp(holding)})
}

func (h *HoldingHandler) Delete(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	res := h.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Holding{})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete holding")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "holding not found")
		return
	}

	util.Success(c, util.Response{"message": "holding deleted"})
}

// Valuation prices all holdings against current quotes and sums the
// portfolio in the user's preferred currency.
func (h *HoldingHandler) Valuation(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var rows []models.Holding
	if err := h.DB.Where("user_id = ?", user.ID).Order("symbol ASC").Find(&rows).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list holdings")
		return
	}

	// the quote batch and the rate refresh hit independent upstreams
	var qs map[string]quotes.Quote
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		qs = h.Quotes.BatchLoad(ctx, holdings.Symbols(rows))
		return nil
	})
	g.Go(func() error {
		// make sure the pairs this valuation needs are cached before the
		// one-shot load below
		pairs := make([][2]string, 0, len(rows))
		for i := range rows {
			pairs = append(pairs, [2]string{rows[i].Currency, user.PreferredCurrency})
		}
		h.FX.RefreshPairs(ctx, pairs)
		return nil
	})
	_ = g.Wait()

	cache, err := fx.LoadCache(h.DB)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load exchange rates")
		return
	}
	conv := func(amount float64, cur string) float64 {
		return cache.Convert(amount, cur, user.PreferredCurrency)
	}

	values := holdings.Valuate(rows, qs, conv)

	var totalCost, totalValue float64
	for _, v := range values {
		totalCost += v.CostBasis
		totalValue += v.MarketValue
	}

	util.Success(c, util.Response{
		"holdings":           values,
		"currency":           user.PreferredCurrency,
		"total_cost_basis":   util.RoundCents(totalCost),
		"total_market_value": util.RoundCents(totalValue),
		"total_gain_loss":    util.RoundCents(totalValue - totalCost),
	})
}
