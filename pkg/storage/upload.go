package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrFileRequired is returned when an upload has no content.
	ErrFileRequired = errors.New("file is required")
	// ErrFileTooLarge is returned when an upload exceeds the policy limit.
	ErrFileTooLarge = errors.New("file exceeds size limit")
	// ErrMIMENotAllowed is returned when the detected content type is not allowed.
	ErrMIMENotAllowed = errors.New("file type not allowed")
)

// Upload carries a multipart file and its metadata.
type Upload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.ReadSeeker
}

// UploadPolicy validates uploads against a size limit and a MIME allow-list.
type UploadPolicy struct {
	MaxBytes int64
	allowed  map[string]struct{}
}

// NewUploadPolicy builds a policy. An empty allow-list accepts documents and images.
func NewUploadPolicy(maxBytes int64, allowedMIMEs []string) UploadPolicy {
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	if len(allowedMIMEs) == 0 {
		allowedMIMEs = []string{
			"application/pdf",
			"image/png",
			"image/jpeg",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"text/plain",
		}
	}
	allowed := make(map[string]struct{}, len(allowedMIMEs))
	for _, mt := range allowedMIMEs {
		allowed[strings.ToLower(strings.TrimSpace(mt))] = struct{}{}
	}
	return UploadPolicy{MaxBytes: maxBytes, allowed: allowed}
}

// Inspect checks size and content type and rewinds the content. The first 512 bytes are always
// sniffed; a declared type must agree with them. It returns the effective MIME type.
func (p UploadPolicy) Inspect(u Upload) (string, error) {
	if u.Content == nil || u.Size <= 0 {
		return "", ErrFileRequired
	}
	if u.Size > p.MaxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrFileTooLarge, p.MaxBytes)
	}
	header := make([]byte, 512)
	n, err := io.ReadFull(u.Content, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("inspect upload: %w", err)
	}
	if n == 0 {
		return "", ErrFileRequired
	}
	if _, err := u.Content.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	sniffed := baseMIME(http.DetectContentType(header[:n]))
	mimeType := baseMIME(u.MimeType)
	switch {
	case mimeType == "" || mimeType == "application/octet-stream":
		mimeType = sniffed
	case !contentMatches(mimeType, sniffed):
		return "", fmt.Errorf("%w: declared %s, content is %s", ErrMIMENotAllowed, mimeType, sniffed)
	}
	if _, ok := p.allowed[mimeType]; !ok {
		return "", fmt.Errorf("%w: %s", ErrMIMENotAllowed, mimeType)
	}
	return mimeType, nil
}

// contentMatches reports whether sniffed content is consistent with the declared type.
// Office Open XML files sniff as zip archives and plain text formats sniff as text/plain.
func contentMatches(declared, sniffed string) bool {
	switch {
	case declared == sniffed:
		return true
	case strings.HasPrefix(declared, "application/vnd.openxmlformats-officedocument."):
		return sniffed == "application/zip"
	case strings.HasPrefix(declared, "text/"):
		return sniffed == "text/plain"
	}
	return false
}

// GenerateName builds a unique relative storage name under dir keeping the original extension.
func GenerateName(dir, original, mimeType string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = extensionFor(mimeType)
	}
	stem := sanitize(strings.TrimSuffix(filepath.Base(original), filepath.Ext(original)))
	if stem == "" {
		stem = "file"
	}
	name := fmt.Sprintf("%s_%d_%s%s", stem, now.Unix(), randomSuffix(), ext)
	if dir == "" {
		return name
	}
	return strings.TrimRight(dir, "/") + "/" + name
}

func baseMIME(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.Index(raw, ";"); idx >= 0 {
		raw = strings.TrimSpace(raw[:idx])
	}
	return raw
}

func extensionFor(mimeType string) string {
	switch baseMIME(mimeType) {
	case "application/pdf":
		return ".pdf"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return ".docx"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return ".xlsx"
	case "text/plain":
		return ".txt"
	default:
		return ".bin"
	}
}

func sanitize(raw string) string {
	raw = strings.ToLower(raw)
	var b strings.Builder
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if len(out) > 40 {
		out = out[:40]
	}
	return out
}

func randomSuffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
