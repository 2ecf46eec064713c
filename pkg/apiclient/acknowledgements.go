package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
)

// Acknowledgements wraps the acknowledgement endpoints.
type Acknowledgements struct {
	c *Client
}

// File is an attachment sent as multipart form data.
type File struct {
	Name    string
	Content io.Reader
}

// List returns acknowledgements newest first.
func (s *Acknowledgements) List(ctx context.Context) ([]Acknowledgement, error) {
	var out []Acknowledgement
	err := s.c.cachedGet(ctx, TagAcknowledgements, "acknowledgement/list", nil, &out)
	return out, err
}

// Create posts a new acknowledgement. sub.File may be nil.
func (s *Acknowledgements) Create(ctx context.Context, sub Submission) (*Acknowledgement, error) {
	return s.send(ctx, http.MethodPost, "acknowledgement/create", sub)
}

// Update replaces the message, and the severity or attachment when set.
func (s *Acknowledgements) Update(ctx context.Context, id string, sub Submission) (*Acknowledgement, error) {
	return s.send(ctx, http.MethodPut, "acknowledgement/update/"+Path(id), sub)
}

// Delete removes one acknowledgement.
func (s *Acknowledgements) Delete(ctx context.Context, id string) error {
	if _, err := s.c.do(ctx, request{method: http.MethodDelete, path: "acknowledgement/delete/" + Path(id)}, nil); err != nil {
		return err
	}
	s.c.Invalidate(TagAcknowledgements)
	return nil
}

// Clear removes every acknowledgement.
func (s *Acknowledgements) Clear(ctx context.Context) error {
	if _, err := s.c.do(ctx, request{method: http.MethodDelete, path: "acknowledgement/clear"}, nil); err != nil {
		return err
	}
	s.c.Invalidate(TagAcknowledgements)
	return nil
}

func (s *Acknowledgements) send(ctx context.Context, method, path string, sub Submission) (*Acknowledgement, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("message", sub.Message); err != nil {
		return nil, fmt.Errorf("write message field: %w", err)
	}
	if sub.Severity != "" {
		if err := form.WriteField("severity", string(sub.Severity)); err != nil {
			return nil, fmt.Errorf("write severity field: %w", err)
		}
	}
	if file := sub.File; file != nil && file.Content != nil {
		part, err := form.CreateFormFile("file", file.Name)
		if err != nil {
			return nil, fmt.Errorf("create file part: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, fmt.Errorf("copy file part: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	var out Acknowledgement
	if _, err := s.c.do(ctx, request{method: method, path: path, raw: &buf, contentType: form.FormDataContentType()}, &out); err != nil {
		return nil, err
	}
	s.c.Invalidate(TagAcknowledgements)
	return &out, nil
}

// Notifier receives user-facing outcomes of mutations.
type Notifier interface {
	Success(message string)
	Failure(message string)
}

// Submission is the content of the acknowledgement form. Severity may be left empty.
type Submission struct {
	Message  string
	Severity Severity
	File     *File
}

// AcknowledgementForm creates the first acknowledgement or updates the latest one.
type AcknowledgementForm struct {
	svc      *Acknowledgements
	notifier Notifier

	mu   sync.Mutex
	data []Acknowledgement
}

// NewForm builds a form. notifier may be nil.
func (s *Acknowledgements) NewForm(notifier Notifier) *AcknowledgementForm {
	return &AcknowledgementForm{svc: s, notifier: notifier}
}

// Data returns the acknowledgements loaded by the last refetch, newest first.
func (f *AcknowledgementForm) Data() []Acknowledgement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Acknowledgement(nil), f.data...)
}

// Submit updates the latest acknowledgement, or creates one when none exists, then refetches.
func (f *AcknowledgementForm) Submit(ctx context.Context, sub Submission) (*Acknowledgement, error) {
	existing, err := f.svc.List(ctx)
	if err != nil {
		f.fail(err)
		return nil, err
	}

	var saved *Acknowledgement
	action := "created"
	if len(existing) == 0 {
		saved, err = f.svc.Create(ctx, sub)
	} else {
		action = "updated"
		saved, err = f.svc.Update(ctx, existing[0].ID, sub)
	}
	if err != nil {
		f.fail(err)
		return nil, err
	}

	fresh, err := f.svc.List(ctx)
	if err != nil {
		f.fail(err)
		return saved, err
	}
	f.mu.Lock()
	f.data = fresh
	f.mu.Unlock()
	if f.notifier != nil {
		f.notifier.Success("Acknowledgement " + action + " successfully")
	}
	return saved, nil
}

func (f *AcknowledgementForm) fail(err error) {
	if f.notifier != nil {
		f.notifier.Failure(err.Error())
	}
}
