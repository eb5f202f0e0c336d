// Package response writes the JSON envelope shared by the API endpoints.
//
// Two kinds of response bypass it: the bulk import endpoint answers with the
// bulk response body itself so the import tool can reconcile it, and the
// template and export endpoints send file attachments.
package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Envelope wraps every non-attachment response except bulk imports.
type Envelope struct {
	Status string     `json:"status"`
	Data   any        `json:"data,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
	Meta   Meta       `json:"meta"`
}

// ErrorBody is the error half of an envelope. Code is a stable machine
// readable value such as UNMAPPED_FIELDS or IN_PROGRESS.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Meta ties a response to the request's log lines.
type Meta struct {
	CorrelationID string `json:"correlation_id"`
	Timestamp     string `json:"timestamp"`
}

func newMeta(c *gin.Context) Meta {
	id, ok := c.Get("correlation_id")
	corrID, _ := id.(string)
	if !ok || corrID == "" {
		corrID = uuid.New().String()
	}
	return Meta{
		CorrelationID: corrID,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
}

// Success sends data with statusCode.
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Envelope{Status: "success", Data: data, Meta: newMeta(c)})
}

// Error sends an error envelope.
func Error(c *gin.Context, statusCode int, code, message string, details any) {
	c.JSON(statusCode, Envelope{
		Status: "error",
		Error:  &ErrorBody{Code: code, Message: message, Details: details},
		Meta:   newMeta(c),
	})
}

// BadRequest sends a 400 VALIDATION_ERROR.
func BadRequest(c *gin.Context, message string, details any) {
	Error(c, http.StatusBadRequest, "VALIDATION_ERROR", message, details)
}

// TooLarge sends a 413 for uploads and batches over the configured limits.
func TooLarge(c *gin.Context, code, message string) {
	Error(c, http.StatusRequestEntityTooLarge, code, message, nil)
}

// Conflict sends a 409, e.g. for an Idempotency-Key whose first request has
// not finished.
func Conflict(c *gin.Context, code, message string, details any) {
	Error(c, http.StatusConflict, code, message, details)
}

func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, "FORBIDDEN", message, nil)
}
