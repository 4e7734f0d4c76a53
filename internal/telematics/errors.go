package telematics

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenMissing means the client was constructed without an API token.
	ErrTokenMissing = errors.New("telematics: API token is not configured")

	// ErrAuthentication covers 401 responses; retrying will not help.
	ErrAuthentication = errors.New("telematics: invalid or expired token")

	// ErrForbidden covers 403 responses; the token lacks permissions.
	ErrForbidden = errors.New("telematics: access forbidden")

	// ErrRateLimited covers 429 responses.
	ErrRateLimited = errors.New("telematics: rate limit exceeded")

	// ErrServer covers 5xx responses.
	ErrServer = errors.New("telematics: upstream server error")

	// ErrUpstream covers error payloads in otherwise successful responses
	// and 4xx statuses outside the cases above.
	ErrUpstream = errors.New("telematics: upstream rejected the request")
)

// classifyStatus maps an HTTP status to a failure, or nil for success
// statuses. Errors embedded in a 200 body are handled by the caller.
func classifyStatus(status int, upstreamErrors []any) error {
	switch {
	case status == 401:
		return fmt.Errorf("%w (status 401)", ErrAuthentication)
	case status == 403:
		return fmt.Errorf("%w (status 403)", ErrForbidden)
	case status == 429:
		return fmt.Errorf("%w (status 429)", ErrRateLimited)
	case status >= 500:
		return fmt.Errorf("%w (status %d)", ErrServer, status)
	case status >= 400:
		return fmt.Errorf("%w: status %d: %v", ErrUpstream, status, upstreamErrors)
	default:
		return nil
	}
}

// retryable reports whether a classified failure is worth another attempt.
// Authentication and permission failures will not succeed on retry.
func retryable(err error) bool {
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServer) {
		return true
	}
	return !errors.Is(err, ErrAuthentication) &&
		!errors.Is(err, ErrForbidden) &&
		!errors.Is(err, ErrUpstream)
}
