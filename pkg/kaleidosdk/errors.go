package kaleidosdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/kaleidoscope/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeInvalidRequest      = "invalid_request"
	ErrorCodeInvalidCredentials  = "invalid_credentials"
	ErrorCodeEmailTaken          = "email_taken"
	ErrorCodeHandleTaken         = "handle_taken"
	ErrorCodeInvalidHandle       = "invalid_handle"
	ErrorCodeInvalidToken        = "invalid_token"
	ErrorCodeInvalidRefreshToken = "invalid_refresh_token"
	ErrorCodeSessionNotFound     = "session_not_found"
	ErrorCodeSessionExpired      = "session_expired"
	ErrorCodeRateLimitExceeded   = "rate_limit_exceeded"
	ErrorCodeServerError         = "server_error"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the error body of every non-2xx API response.
// The server writes it with WriteError and the SDK returns it from calls.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine readable error code (e.g. "email_taken")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is reports whether target is an *APIError with the same status and code,
// so callers can match a decoded response against the predefined values.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Code == t.Code
}

// WriteError writes e to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

// NewAPIError creates an APIError with a custom description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrInvalidEmail = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "Invalid email address",
	}

	ErrWeakPassword = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "Password must be at least 8 characters",
	}

	ErrMissingQuery = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "Query parameter is required",
	}

	ErrEmailTaken = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeEmailTaken,
		Description: "Email already registered",
	}

	ErrHandleTaken = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeHandleTaken,
		Description: "Handle already taken",
	}

	ErrInvalidHandle = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidHandle,
		Description: "Handle can only contain letters, numbers, underscores, and dashes",
	}

	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "Invalid credentials",
	}

	ErrInvalidRefreshToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidRefreshToken,
		Description: "Invalid refresh token",
	}

	// ErrSessionNotFound is returned for unknown, revoked and replayed refresh tokens.
	ErrSessionNotFound = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeSessionNotFound,
		Description: "Session not found or revoked",
	}

	ErrSessionExpired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeSessionExpired,
		Description: "Session expired",
	}

	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "Invalid or expired token",
	}

	ErrRateLimited = &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeRateLimitExceeded,
		Description: "Too many requests. Please try again later.",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}

	ErrMethodNotAllowed = &APIError{
		StatusCode:  http.StatusMethodNotAllowed,
		Code:        ErrorCodeInvalidRequest,
		Description: "method not allowed",
	}
)

// Music lookups that the API reports in a 200 body rather than a status code.
var (
	ErrUnsupportedPlatform = errors.New("kaleidosdk: unsupported platform")
	ErrTrackNotFound       = errors.New("kaleidosdk: track not found")
	ErrStreamNotAvailable  = errors.New("kaleidosdk: stream not available")
)

// Body messages for the soft music outcomes.
const (
	MsgUnsupportedPlatform = "Unsupported platform"
	MsgTrackNotFound       = "Track not found"
	MsgStreamNotAvailable  = "Stream not available"
)

// musicError maps a soft music error message to its sentinel.
func musicError(msg string) error {
	switch msg {
	case "":
		return nil
	case MsgUnsupportedPlatform:
		return ErrUnsupportedPlatform
	case MsgTrackNotFound:
		return ErrTrackNotFound
	case MsgStreamNotAvailable:
		return ErrStreamNotAvailable
	default:
		return fmt.Errorf("kaleidosdk: %s", msg)
	}
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response into an *APIError.
// Returns nil if the response indicates success.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
