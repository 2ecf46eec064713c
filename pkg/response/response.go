package response

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/learner-hub-api/pkg/errors"
	"github.com/noah-isme/learner-hub-api/pkg/middleware/requestid"
)

// Envelope is the body of every JSON response: { data, message, status } plus error and meta.
type Envelope struct {
	Data    interface{}            `json:"data,omitempty"`
	Message string                 `json:"message,omitempty"`
	Status  int                    `json:"status"`
	Error   *appErrors.Error       `json:"error,omitempty"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// JSON sends data with optional response metadata.
func JSON(c *gin.Context, status int, data interface{}, meta map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data, Status: status}
	if len(meta) > 0 {
		envelope.Meta = meta
	}
	c.JSON(status, envelope)
}

// Message sends data with the user-facing message shown after a mutation.
func Message(c *gin.Context, status int, data interface{}, message string) {
	noStore(c)
	c.JSON(status, Envelope{Data: data, Message: message, Status: status})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}, message string) {
	Message(c, http.StatusCreated, data, message)
}

// Error renders err as an envelope; the message is duplicated at the top level for clients
// that only read { message, status }.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	envelope := Envelope{Error: appErr, Message: appErr.Message, Status: appErr.Status}
	if reqID := requestid.Value(c); reqID != "" {
		envelope.Meta = map[string]interface{}{"request_id": reqID}
	}
	c.JSON(appErr.Status, envelope)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// AttachmentHeaders marks the response as a non-cacheable file download named filename.
func AttachmentHeaders(c *gin.Context, filename string) {
	noStore(c)
	c.Header("Content-Disposition", disposition(filename))
}

// Attachment writes payload as a file download.
func Attachment(c *gin.Context, filename, contentType string, payload []byte) {
	AttachmentHeaders(c, filename)
	c.Data(http.StatusOK, orOctetStream(contentType), payload)
}

// AttachmentStream writes size bytes from r as a file download.
func AttachmentStream(c *gin.Context, filename, contentType string, size int64, r io.Reader) {
	AttachmentHeaders(c, filename)
	c.DataFromReader(http.StatusOK, size, orOctetStream(contentType), r, nil)
}

func orOctetStream(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return "application/octet-stream"
	}
	return contentType
}

// disposition quotes ASCII names and falls back to RFC 5987 encoding for anything else.
func disposition(filename string) string {
	name := strings.ReplaceAll(strings.TrimSpace(filename), `"`, "")
	if name == "" {
		name = "download"
	}
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return fmt.Sprintf("attachment; filename=%q", name)
}
