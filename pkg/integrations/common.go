package integrations

import (
	"errors"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/matzehuels/outdated/pkg/errors"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NormalizeBaseURL validates a registry endpoint and strips trailing slashes
// so package paths can be appended directly.
func NormalizeBaseURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if err := apperrors.ValidateURL(s); err != nil {
		return "", err
	}
	return strings.TrimRight(s, "/"), nil
}
