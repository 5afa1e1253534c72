package response

import "github.com/gin-gonic/gin"

// Body is the envelope every JSON endpoint returns. Status is true for
// success responses and false for errors.
type Body struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK writes a success envelope with the given HTTP code.
func OK(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Body{Status: true, Message: message, Data: data})
}

// Fail writes an error envelope with the given HTTP code.
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Body{Status: false, Message: message})
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Body{Status: false, Message: message})
}
