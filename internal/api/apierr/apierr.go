// Package apierr defines the stable machine-readable error codes the
// API returns. Bodies never carry filesystem paths or internal error
// text; those go to the server log only.
package apierr

import "github.com/gin-gonic/gin"

const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeRateLimited  = "rate_limited"
	CodeNotFound     = "not_found"
	CodeTooLarge     = "too_large"
	CodeStorage      = "storage_error"
)

// Abort writes the error body and stops the handler chain.
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":  code,
		"error": message,
	})
}
