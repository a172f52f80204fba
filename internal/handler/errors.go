package handler

import "github.com/pkg/errors"

var (
	// ErrMissingSignature is returned when signatures are required and the delivery has none.
	ErrMissingSignature = errors.New("missing signature")
	// ErrSignatureMismatch is returned when the delivery signature does not match.
	ErrSignatureMismatch = errors.New("signature mismatch")
	// ErrMalformedPayload is matched by every MalformedPayloadError.
	ErrMalformedPayload = errors.New("malformed payload")
)

// MalformedPayloadError reports a delivery that could not be parsed or decoded.
type MalformedPayloadError struct {
	Err error
}

func (m *MalformedPayloadError) Error() string {
	if m.Err == nil {
		return ErrMalformedPayload.Error()
	}
	return ErrMalformedPayload.Error() + ": " + m.Err.Error()
}

func (m *MalformedPayloadError) Unwrap() error { return m.Err }

func (m *MalformedPayloadError) Is(target error) bool { return target == ErrMalformedPayload }

// ProcessingError reports a processor failure on an accepted delivery.
type ProcessingError struct {
	Err error
}

func (m *ProcessingError) Error() string {
	return "failed to process delivery: " + m.Err.Error()
}

func (m *ProcessingError) Unwrap() error { return m.Err }
