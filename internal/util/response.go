package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the data payload of a successful reply.
type Response map[string]interface{}

// Business error codes.
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeForbidden    = 40301
	CodeNotFound     = 40401
	CodeConflict     = 40901
	CodeServerErr    = 50001
)

// Success writes the unified success envelope.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error writes the unified error envelope.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// FieldErrors writes a validation failure with field-keyed message lists,
// e.g. {"errors": {"amount": ["must be positive"]}}.
func FieldErrors(c *gin.Context, fields map[string][]string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    CodeInvalidParam,
		"message": "validation failed",
		"errors":  fields,
	})
}

// FieldError is the single-field shortcut for FieldErrors.
func FieldError(c *gin.Context, field, msg string) {
	FieldErrors(c, map[string][]string{field: {msg}})
}
