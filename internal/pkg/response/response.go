package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// requestIDKey matches middleware.ContextRequestID; importing middleware here
// would create a cycle.
const requestIDKey = "request_id"

type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Envelope{Success: true, Data: data})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	ErrorWithDetails(c, statusCode, code, message, nil)
}

// ErrorWithDetails adds a machine readable payload, usually field → rule.
func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, Envelope{
		Error: &ErrorBody{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: c.GetString(requestIDKey),
		},
	})
}

// Abort writes the error envelope and stops the handler chain.
func Abort(c *gin.Context, statusCode int, code string, message string) {
	Error(c, statusCode, code, message)
	c.Abort()
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
