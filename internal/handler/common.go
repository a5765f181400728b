package handler

import (
	"net/http"
	"strconv"

	"github.com/avifenesh/expense-track-sub006/internal/middleware"
	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/avifenesh/expense-track-sub006/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// requireUser extracts the authenticated user or writes a 401.
func requireUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	return user, true
}

// idParam parses the :id path parameter.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// activeAccounts scopes account reads to rows that are not soft-deleted.
// Every account read path goes through this so a forgotten filter cannot
// resurrect deleted rows.
func activeAccounts(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&models.Account{}).
		Where("user_id = ? AND deleted_at IS NULL", userID)
}

// ownedAccount loads one active account owned by the user.
func ownedAccount(db *gorm.DB, userID, accountID uint) (*models.Account, error) {
	var account models.Account
	err := db.Where("id = ? AND user_id = ? AND deleted_at IS NULL", accountID, userID).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ownedCategory loads one category owned by the user.
func ownedCategory(db *gorm.DB, userID, categoryID uint) (*models.Category, error) {
	var category models.Category
	err := db.Where("id = ? AND user_id = ?", categoryID, userID).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}
