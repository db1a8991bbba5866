package response

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rizalarfiyan/siakad-backend/pkg/apperror"
)

// Envelope is the wire format shared by every endpoint: data on success,
// the same shape with success=false and data=null on failure.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// OK writes a success envelope.
func OK(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, Envelope{
		StatusCode: code,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// Error maps err to an HTTP status and writes a failure envelope.
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	c.JSON(code, Envelope{
		StatusCode: code,
		Data:       nil,
		Message:    err.Error(),
		Success:    false,
	})
}

// BadRequest writes a 400 failure envelope with the given message, used for
// binding/validation failures.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{
		StatusCode: http.StatusBadRequest,
		Data:       nil,
		Message:    message,
		Success:    false,
	})
}
