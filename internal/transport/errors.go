package transport

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrConfiguration is matched by every *ConfigError.
var ErrConfiguration = errors.New("invalid client configuration")

// ConfigError is returned before any network activity when the call or the client is misconfigured.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return "configuration error: " + e.Reason
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is reports ErrConfiguration as a match.
func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

// TransportError reports a failure to complete the exchange: the request could not be sent,
// the response could not be read, or the response could not be interpreted.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError is returned when the service answers with a status code of 400 or above.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error %d: %s", e.StatusCode, e.Message)
}

// APIError is returned when the service answers successfully but the payload carries an error status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return "api error: " + e.Message
}

// IsUnreachable reports whether err means the service could not be reached or understood.
func IsUnreachable(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsRejected reports whether err means the service was reached and refused the call.
func IsRejected(err error) bool {
	var (
		he *HTTPError
		ae *APIError
	)
	return errors.As(err, &he) || errors.As(err, &ae)
}
