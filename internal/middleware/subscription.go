package middleware

import (
	"net/http"
	"time"

	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/avifenesh/expense-track-sub006/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RequireSubscription gates premium routes (holdings, sharing, export)
// behind an active, unexpired subscription. Runs after AuthMiddleware.
func RequireSubscription(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
			c.Abort()
			return
		}

		var sub models.Subscription
		if err := db.Where("user_id = ?", user.ID).First(&sub).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				util.Error(c, http.StatusForbidden, util.CodeForbidden, "subscription required")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load subscription")
			}
			c.Abort()
			return
		}

		if !sub.IsActive(time.Now()) {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "subscription inactive or expired")
			c.Abort()
			return
		}

		c.Next()
	}
}
