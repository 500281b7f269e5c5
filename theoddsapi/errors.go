package theoddsapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/XavierBriggs/Iris/pkg/contracts"
	"github.com/XavierBriggs/Iris/pkg/models"
)

// ConfigurationError reports caller misuse detected before any network call.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "theoddsapi: " + e.Reason
}

// ParseError reports a payload that does not match the provider contract.
// It carries the JSON path of the offending field and the raw value so the
// mismatch can be diagnosed against the live API.
type ParseError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return "theoddsapi: parse: " + e.Reason
	}
	return fmt.Sprintf("theoddsapi: parse %s=%q: %s", e.Field, e.Value, e.Reason)
}

// ProviderError is the catch-all for non-2xx provider responses and the base
// carried by every classified provider error. Quota is set when the response
// included usage headers.
type ProviderError struct {
	StatusCode int
	Message    string
	Body       []byte
	Quota      *models.Quota
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("theoddsapi: HTTP %d: %s", e.StatusCode, e.Message)
}

// AuthenticationError is a 401 or 403: missing, invalid, or suspended key.
type AuthenticationError struct{ ProviderError }

// NotFoundError is a 404: unknown sport or event.
type NotFoundError struct{ ProviderError }

// ProviderConfigurationError is a 400 or 422: the provider rejected request
// parameters. Distinct from ConfigurationError, which is raised locally
// before any network call.
type ProviderConfigurationError struct{ ProviderError }

// QuotaExceededError is a 429: the key's usage quota is exhausted.
type QuotaExceededError struct{ ProviderError }

// ProviderUnavailableError is any 5xx.
type ProviderUnavailableError struct{ ProviderError }

func (e *AuthenticationError) Unwrap() error        { return &e.ProviderError }
func (e *NotFoundError) Unwrap() error              { return &e.ProviderError }
func (e *ProviderConfigurationError) Unwrap() error { return &e.ProviderError }
func (e *QuotaExceededError) Unwrap() error         { return &e.ProviderError }
func (e *ProviderUnavailableError) Unwrap() error   { return &e.ProviderError }

// classify maps a non-2xx transport response onto the error taxonomy.
// No retries happen here; every classified error goes back to the caller.
func classify(resp *contracts.Response, quota *models.Quota) error {
	base := ProviderError{
		StatusCode: resp.StatusCode,
		Message:    providerMessage(resp.Body),
		Body:       resp.Body,
		Quota:      quota,
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthenticationError{base}
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{base}
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return &ProviderConfigurationError{base}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &QuotaExceededError{base}
	case resp.StatusCode >= 500:
		return &ProviderUnavailableError{base}
	default:
		return &base
	}
}

// providerMessage extracts the provider's error text. The API reports errors
// as {"message": "..."}; anything else falls back to the raw body or a
// generic message.
func providerMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return "request failed"
}
