package database

import (
	"fmt"

	"github.com/avifenesh/expense-track-sub006/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.Account{},
		&models.Category{},
		&models.Transaction{},
		&models.TransactionRequest{},
		&models.Budget{},
		&models.RecurringTemplate{},
		&models.Holding{},
		&models.SharedExpense{},
		&models.ExpenseParticipant{},
		&models.ExchangeRate{},
		&models.StockPrice{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
