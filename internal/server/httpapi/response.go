package httpapi

import (
	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope every endpoint answers with. Data is null on errors.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func respondSuccess(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Response{Status: StatusSuccess, Message: message, Data: data})
}

func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, Response{Status: StatusError, Message: message})
}

// abortWithError stops the handler chain; used by middleware.
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Response{Status: StatusError, Message: message})
}
