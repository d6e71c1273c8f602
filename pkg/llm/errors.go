package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned before any network call when the provider has no credential.
	ErrNotConfigured = errors.New("llm provider not configured")
	// ErrMalformedResponse is returned when a 2xx response carries no message.
	ErrMalformedResponse = errors.New("no message in llm response")
)

// ProviderError reports a non-2xx response from a provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s api error: %d", e.Provider, e.StatusCode)
}

// IsNotConfigured reports whether err stems from a missing credential.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}
