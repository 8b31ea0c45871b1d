package service

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid_request")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrWeakPassword        = errors.New("weak_password")
	ErrInvalidHandle       = errors.New("invalid_handle")
	ErrEmailTaken          = errors.New("email_taken")
	ErrHandleTaken         = errors.New("handle_taken")
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrInvalidToken        = errors.New("invalid_token")
	ErrInvalidRefreshToken = errors.New("invalid_refresh_token")
	ErrSessionNotFound     = errors.New("session_not_found")
	ErrSessionExpired      = errors.New("session_expired")
	ErrIdentityNotFound    = errors.New("identity_not_found")
)
