package handler

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/learner-hub-api/internal/middleware"
	"github.com/noah-isme/learner-hub-api/internal/models"
	"github.com/noah-isme/learner-hub-api/internal/service"
	appErrors "github.com/noah-isme/learner-hub-api/pkg/errors"
	"github.com/noah-isme/learner-hub-api/pkg/response"
	"github.com/noah-isme/learner-hub-api/pkg/storage"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}

// cachedList writes a list response annotated with tag-cache metadata and the item count.
func cachedList(c *gin.Context, tag string, data interface{}, hit bool) {
	middleware.SetCacheHit(c, tag, hit)
	if v := reflect.ValueOf(data); v.Kind() == reflect.Slice {
		middleware.SetMeta(c, "count", v.Len())
	}
	response.JSON(c, http.StatusOK, data, middleware.ExtractMeta(c))
}

// openedUpload is a multipart file buffered into a seekable reader.
type openedUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.ReadSeeker
	closer   io.Closer
}

func (u *openedUpload) Upload() storage.Upload {
	return storage.Upload{Filename: u.Filename, Size: u.Size, MimeType: u.MimeType, Content: u.Content}
}

func (u *openedUpload) Close() {
	if u != nil && u.closer != nil {
		u.closer.Close() //nolint:errcheck
	}
}

// formFile opens the named multipart field. A missing field yields (nil, nil) when optional.
func formFile(c *gin.Context, field string, optional bool) (*openedUpload, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		if optional && (err == http.ErrMissingFile || err == http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is required", field))
	}
	return openHeader(fileHeader)
}

func openHeader(fileHeader *multipart.FileHeader) (*openedUpload, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, appErrors.Internal(err, "failed to open file")
	}
	upload := &openedUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
		closer:   src,
	}
	reader, ok := src.(io.ReadSeeker)
	if !ok {
		buf, readErr := io.ReadAll(src)
		if readErr != nil {
			src.Close() //nolint:errcheck
			return nil, appErrors.Internal(readErr, "failed to buffer file")
		}
		reader = bytes.NewReader(buf)
	}
	upload.Content = reader
	return upload, nil
}

// streamDownload writes a stored file as an attachment and closes it.
func streamDownload(c *gin.Context, download *service.FileDownload) {
	defer download.File.Close() //nolint:errcheck
	response.AttachmentStream(c, download.Filename, download.MimeType, download.SizeBytes, download.File)
}
