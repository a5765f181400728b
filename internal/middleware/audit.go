package middleware

import (
	"github.com/avifenesh/expense-track-sub006/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditMiddleware tags each request with an id and records one audit row
// per authenticated request. Write failures are ignored: auditing never
// breaks the request.
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Header("X-Request-ID", requestID)

		c.Next()

		user, ok := CurrentUser(c)
		if !ok {
			return
		}
		userID := user.ID

		log := models.AuditLog{
			RequestID: requestID,
			UserID:    &userID,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		_ = db.Create(&log).Error
	}
}
