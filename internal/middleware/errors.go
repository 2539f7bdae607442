package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/permitpulse/internal/domain/dto"
	"github.com/guttosm/permitpulse/internal/logger"
)

// ErrorHandler turns errors attached with c.Error into a JSON ErrorResponse
// when the handler chain did not write a response itself.
//
// Usage:
//
//	router.Use(middleware.ErrorHandler)
//	...
//	_ = c.Error(err) // 500 with {"message":"Internal server error","error":"..."}
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}
	last := c.Errors.Last()

	rid, _ := c.Get(RequestIDKey)
	logger.L().Error().
		Str("request_id", toString(rid)).
		Err(last.Err).
		Msg("request failed")

	if c.Writer.Written() {
		return
	}
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", last.Err))
}

// AbortWithError stops the chain and writes a standardized error body.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
