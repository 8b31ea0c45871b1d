/*
Package kaleidosdk provides a client SDK for the Kaleidoscope API.

# SDKClient vs Session

The package is organised around two types:

  - SDKClient: unauthenticated operations (register, login, refresh, logout,
    health, JWKS) and the entry point for creating sessions
  - Session: bearer-authenticated operations with automatic token refresh

	client := kaleidosdk.NewSDKClient("https://kaleidoscope.example.com")

	session, err := client.Login(ctx, "ada@example.com", "correct horse battery")
	if err != nil {
		return err
	}

	tracks, err := session.Search(ctx, "soundcloud", "daft punk", 10)

# Errors

Non-2xx responses are returned as *APIError. The music endpoints answer 200
with an "error" member for not-found and unsupported-platform outcomes; the
SDK turns those into ErrTrackNotFound, ErrStreamNotAvailable and
ErrUnsupportedPlatform.

The APIError values declared here are also what the server writes, so the
wire format has exactly one definition.
*/
package kaleidosdk
