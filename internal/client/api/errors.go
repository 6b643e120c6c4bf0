package api

import (
	"fmt"
	"net/http"

	"github.com/condoway/client-go/internal/common"
)

// StatusError is returned for non-2xx responses. It keeps a snippet of the
// response body for diagnostics.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("server returned %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// HTTPStatus exposes the status code to layers that classify errors without
// importing this package.
func (e *StatusError) HTTPStatus() int {
	return e.Code
}

// Is lets callers match sentinel conditions with errors.Is.
func (e *StatusError) Is(target error) bool {
	switch target {
	case common.ErrUnauthorized:
		return e.Code == http.StatusUnauthorized
	default:
		return false
	}
}

const maxBodySnippet = 256

func bodySnippet(body []byte) string {
	if len(body) > maxBodySnippet {
		return string(body[:maxBodySnippet]) + "..."
	}
	return string(body)
}
