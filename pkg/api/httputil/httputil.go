package httputil

import (
	"errors"
	"net/http"

	"bsr_estimator/pkg/core/validate"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RespondError sends {"error": msg} and stops the handler chain.
func RespondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "request_id": RequestIDFrom(c)})
}

// RespondInvalid sends a 400 for validation failures, naming the field, and
// a generic 400 for anything else.
func RespondInvalid(c *gin.Context, err error) {
	var inv *validate.InvalidInputError
	if errors.As(err, &inv) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":      inv.Message,
			"field":      inv.Field,
			"request_id": RequestIDFrom(c),
		})
		return
	}
	RespondError(c, http.StatusBadRequest, err.Error())
}

// CORS sets the headers the browser front end needs and answers preflight requests.
func CORS(allowedOrigin string) gin.HandlerFunc {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowedOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// RequestID reuses a valid incoming X-Request-ID or assigns a new uuid.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestIDFrom returns the id assigned by the RequestID middleware, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
