package response

import "github.com/gin-gonic/gin"

const (
	CodeBadRequest            = 40000
	CodeEmailExists           = 40002
	CodeUnauthorized          = 40100
	CodeInvalidCredentials    = 40101
	CodeUserNotFound          = 40402
	CodeProjectNotFound       = 40403
	CodeConversationNotFound  = 40404
	CodeInternalServer        = 50000
	CodeDependencyUnavailable = 50300
)

type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OK writes data as the whole body; clients read documents without an envelope.
func OK(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, ErrorBody{
		Code:    code,
		Message: message,
	})
}
