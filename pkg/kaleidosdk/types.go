package kaleidosdk

import "github.com/aussiebroadwan/kaleidoscope/pkg/jwtx"

// ============================================================================
// Error Response Types
// ============================================================================

// ErrorResponse is the wire shape of an APIError.
type ErrorResponse struct {
	Error            string `json:"error" example:"invalid_request"`
	ErrorDescription string `json:"error_description,omitempty" example:"the request is malformed or missing required parameters"`
}

// ============================================================================
// Auth Types
// ============================================================================

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" example:"ada@example.com"`
	Password string `json:"password" example:"correct horse battery"`
	Handle   string `json:"handle" example:"ada_l"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" example:"ada@example.com"`
	Password string `json:"password" example:"correct horse battery"`
}

// RefreshRequest is the body of POST /auth/refresh and POST /auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" example:"3q2-7wAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"`
}

// TokenResponse is returned by register, login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJFZERTQSIs..."`
	RefreshToken string `json:"refresh_token" example:"3q2-7wAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"`
	TokenType    string `json:"token_type" example:"bearer"`
	ExpiresIn    int    `json:"expires_in" example:"900"`
}

// LogoutAllResponse reports how many sessions were revoked.
type LogoutAllResponse struct {
	Revoked int64 `json:"revoked" example:"3"`
}

// MeResponse describes the authenticated account.
type MeResponse struct {
	ID          string `json:"id" example:"7b0e8a5e-3c1f-4f4e-9d5c-2b1a0f6e8d7c"`
	Email       string `json:"email" example:"ada@example.com"`
	Handle      string `json:"handle" example:"ada_l"`
	DisplayName string `json:"display_name" example:"ada"`
}

// ============================================================================
// Music Types
// ============================================================================

// Track is a track in the canonical cross-platform shape.
type Track struct {
	ID             string `json:"id" example:"1234567"`
	Title          string `json:"title" example:"One More Time"`
	Artist         string `json:"artist" example:"Daft Punk"`
	Album          string `json:"album" example:"Discovery"`
	Duration       int    `json:"duration" example:"320"`
	DurationString string `json:"durationString" example:"5:20"`
	CoverArt       string `json:"coverArt" example:"https://i1.sndcdn.com/artworks-000-t500x500.jpg"`
	Source         string `json:"source" example:"soundcloud"`
	PermalinkURL   string `json:"permalinkUrl,omitempty"`
	PreviewURL     string `json:"previewUrl,omitempty"`
}

// Stream describes how to play a track.
type Stream struct {
	URL      string `json:"url" example:"https://cf-media.sndcdn.com/abc.mp3"`
	MimeType string `json:"mimeType" example:"audio/mpeg"`
	Type     string `json:"type" example:"audio"`
	Source   string `json:"source" example:"soundcloud"`
}

// SearchResponse is returned by GET /search/{platform}.
type SearchResponse struct {
	Results []Track `json:"results"`
	Error   string  `json:"error,omitempty"`
}

// TrackResponse is a track, or an error message when the lookup came up empty.
type TrackResponse struct {
	Track
	Error string `json:"error,omitempty"`
}

// StreamResponse is a stream, or an error message when none could be resolved.
type StreamResponse struct {
	Stream
	Error string `json:"error,omitempty"`
}

// ============================================================================
// Health Types
// ============================================================================

// RootResponse is returned by GET / and carries the service version.
type RootResponse map[string]string

// HealthResponse is returned by /livez and /readyz (readyz includes Checks).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks is the status of each dependency the service needs to serve.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
	Redis    string `json:"redis,omitempty"`
}

// ============================================================================
// JWKS Types
// ============================================================================

// JWKSResponse contains the JSON Web Key Set published at
// GET /.well-known/jwks.json.
type JWKSResponse jwtx.JWKS
