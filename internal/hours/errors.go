package hours

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates the hours service is unreachable.
	ErrUnavailable = errors.New("hours service unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("hours service request timed out")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("hours service retry attempts exhausted")
)

// genericFailureMsg deliberately hides server internals from the grid user.
const genericFailureMsg = "Could not reach the hours service. Please notify an administrator."

// RemoteError is a non-2xx response from the hours service.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("hours service returned status %d: %s", e.StatusCode, e.Body)
}

// ClientError reports whether the status code indicates a request the server
// rejected (4xx), as opposed to a server-side failure.
func (e *RemoteError) ClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// UserMessage returns the text shown to the grid user for err. Validation
// errors from the service (4xx) are shown verbatim; everything else maps to
// a generic message that leaks no internal detail.
func UserMessage(err error) string {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.ClientError() && remote.Body != "" {
		return remote.Body
	}
	return genericFailureMsg
}

func errorCode(err error) string {
	var remote *RemoteError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.As(err, &remote):
		return fmt.Sprintf("HTTP_%d", remote.StatusCode)
	default:
		return "UNKNOWN"
	}
}
