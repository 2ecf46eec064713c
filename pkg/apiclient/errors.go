package apiclient

import (
	"errors"
	"net/http"
	"strings"
)

const genericMessage = "Something went wrong"

// ErrQuestionTypeRequired is returned before any request when a question has no concrete type.
var ErrQuestionTypeRequired = errors.New("select a question type other than All")

// Error is a failed API call. Message is always populated.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError picks the message from the body, then the status text, then a generic fallback.
func newError(resp *http.Response, env envelope, decoded bool) *Error {
	apiErr := &Error{Status: resp.StatusCode}
	if decoded {
		if env.Error != nil {
			apiErr.Code = env.Error.Code
		}
		switch {
		case strings.TrimSpace(env.Message) != "":
			apiErr.Message = env.Message
		case env.Error != nil && strings.TrimSpace(env.Error.Message) != "":
			apiErr.Message = env.Error.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = statusText(resp)
	}
	if apiErr.Message == "" {
		apiErr.Message = genericMessage
	}
	return apiErr
}

func statusText(resp *http.Response) string {
	// resp.Status is "404 Not Found"; servers may send a custom reason phrase.
	if _, reason, ok := strings.Cut(resp.Status, " "); ok && strings.TrimSpace(reason) != "" {
		return strings.TrimSpace(reason)
	}
	return http.StatusText(resp.StatusCode)
}
