// Package router wires HTTP routes to handlers.
package router

import (
	"github.com/avifenesh/expense-track-sub006/internal/config"
	"github.com/avifenesh/expense-track-sub006/internal/fx"
	"github.com/avifenesh/expense-track-sub006/internal/handler"
	"github.com/avifenesh/expense-track-sub006/internal/middleware"
	"github.com/avifenesh/expense-track-sub006/internal/quotes"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup builds the gin engine with all routes registered.
func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	fxService := fx.NewService(db, cfg.FX.BaseURL)
	quoteService := quotes.NewService(db, quotes.NewClient(cfg.Quotes.BaseURL, cfg.Quotes.APIKey))

	auth := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	accounts := handler.NewAccountHandler(db)
	categories := handler.NewCategoryHandler(db)
	transactions := handler.NewTransactionHandler(db, fxService, cfg.Security.EncryptionKey, cfg.App.PageSize)
	requests := handler.NewRequestHandler(db)
	budgets := handler.NewBudgetHandler(db)
	recurring := handler.NewRecurringHandler(db, fxService)
	holdings := handler.NewHoldingHandler(db, quoteService, fxService)
	shared := handler.NewSharedHandler(db)
	dashboard := handler.NewDashboardHandler(db)
	export := handler.NewExportHandler(db, cfg.Security.EncryptionKey)
	profile := handler.NewProfileHandler(db, cfg.Security.BcryptCost)

	api := r.Group("/api")

	// public
	api.POST("/auth/register", auth.Register)
	api.POST("/auth/login", auth.Login)

	// authenticated
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(cfg.JWT.Secret, db), middleware.AuditMiddleware(db))
	{
		authed.GET("/me", profile.GetMe)
		authed.PUT("/profile", profile.Update)
		authed.POST("/profile/password", profile.ChangePassword)
		authed.POST("/profile/delete", profile.Delete)
		authed.GET("/audit", profile.AuditList)

		authed.POST("/subscription", profile.Subscribe)
		authed.DELETE("/subscription", profile.Cancel)

		authed.POST("/accounts", accounts.Create)
		authed.GET("/accounts", accounts.List)
		authed.PUT("/accounts/:id", accounts.Update)
		authed.DELETE("/accounts/:id", accounts.Delete)

		authed.POST("/categories", categories.Create)
		authed.GET("/categories", categories.List)
		authed.PUT("/categories/:id", categories.Update)
		authed.POST("/categories/:id/archive", categories.Archive)

		authed.POST("/transactions", transactions.Create)
		authed.GET("/transactions", transactions.List)
		authed.GET("/transactions/:id", transactions.Get)
		authed.PUT("/transactions/:id", transactions.Update)
		authed.DELETE("/transactions/:id", transactions.Delete)

		authed.POST("/requests", requests.Create)
		authed.GET("/requests", requests.List)
		authed.POST("/requests/:id/approve", requests.Approve)
		authed.POST("/requests/:id/decline", requests.Decline)

		authed.POST("/budgets", budgets.Upsert)
		authed.GET("/budgets", budgets.List)
		authed.DELETE("/budgets/:id", budgets.Delete)

		authed.POST("/recurring", recurring.Create)
		authed.GET("/recurring", recurring.List)
		authed.PUT("/recurring/:id", recurring.Update)
		authed.POST("/recurring/:id/deactivate", recurring.Deactivate)
		authed.POST("/recurring/apply", recurring.Apply)

		authed.GET("/dashboard", dashboard.Get)
	}

	// premium: holdings, sharing and export require an active subscription
	premium := authed.Group("")
	premium.Use(middleware.RequireSubscription(db))
	{
		premium.POST("/holdings", holdings.Create)
		premium.GET("/holdings", holdings.List)
		premium.PUT("/holdings/:id", holdings.Update)
		premium.DELETE("/holdings/:id", holdings.Delete)
		premium.GET("/holdings/valuation", holdings.Valuation)

		premium.POST("/shared", shared.Create)
		premium.GET("/shared", shared.List)
		premium.PUT("/shared/participants/:id", shared.UpdateParticipantStatus)
		premium.GET("/shared/balances", shared.Balances)

		premium.GET("/export/:format", export.Export)
	}

	return r
}
