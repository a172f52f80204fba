// Package webhook parses and authenticates call notifications pushed by the telephony service.
//
// A delivery is signed with base64(hmac-sha1(secret, fields)), where fields is the concatenation
// of the per-event signed fields (see Kind.SignedFields). Unlike request signing, the raw HMAC
// bytes are base64 encoded.
package webhook

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // required by the remote signature scheme
	"encoding/base64"
	"log/slog"
	"slices"
)

// SignatureHeader carries the delivery signature.
const SignatureHeader = "Signature"

// EchoParameter is the query parameter the service sends when checking ownership of a webhook URL.
// The receiver must answer with its value.
const EchoParameter = "zd_echo"

// Outcome classifies a verification.
type Outcome int

const (
	// Verified means the signature matched.
	Verified Outcome = iota + 1
	// Unverified means no signature was supplied and the event was accepted without authentication.
	Unverified
	// UnknownEvent means the payload carries no recognised event tag.
	UnknownEvent
	// Filtered means the event kind is excluded by the allow-list.
	Filtered
	// SignatureMismatch means the supplied signature does not match.
	SignatureMismatch
	// Malformed means a signed field of a signed delivery is missing or the payload could not be
	// decoded.
	Malformed
)

func (o Outcome) String() string {
	switch o {
	case Verified:
		return "verified"
	case Unverified:
		return "unverified"
	case UnknownEvent:
		return "unknown-event"
	case Filtered:
		return "filtered"
	case SignatureMismatch:
		return "signature-mismatch"
	case Malformed:
		return "malformed"
	}
	return "invalid"
}

// Result is the outcome of a verification. Event is set only when the delivery is accepted.
type Result struct {
	Outcome Outcome
	Kind    Kind
	Event   Event
	// Err describes a Malformed outcome.
	Err error
}

// Accepted reports whether the event may be processed.
func (r Result) Accepted() bool {
	return r.Outcome == Verified || r.Outcome == Unverified
}

// Applicable reports whether the delivery concerns the receiver at all. Inapplicable deliveries
// should be skipped silently.
func (r Result) Applicable() bool {
	return r.Outcome != UnknownEvent && r.Outcome != Filtered
}

// LogValue implements slog.LogValuer.
func (r Result) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("outcome", r.Outcome.String())}
	if r.Kind != "" {
		attrs = append(attrs, slog.String("event", string(r.Kind)))
	}
	if r.Event != nil && r.Event.CallID() != "" {
		attrs = append(attrs, slog.String("pbxCallID", r.Event.CallID()))
	}
	if r.Err != nil {
		attrs = append(attrs, slog.Any("error", r.Err))
	}
	return slog.GroupValue(attrs...)
}

// Verifier checks deliveries against a shared secret and an optional allow-list.
type Verifier struct {
	secret string
	events []Kind
}

// NewVerifier returns a Verifier. With no events every recognised kind is allowed.
func NewVerifier(secret string, events ...Kind) *Verifier {
	return &Verifier{secret: secret, events: slices.Clone(events)}
}

// Verify checks p against signature. It never panics and never returns an error: every rejection
// is reported through the Result.
func (v *Verifier) Verify(p Payload, signature string) Result {
	return Verify(p, v.secret, signature, v.events...)
}

// Verify checks p against the claimed signature using secret. An empty signature accepts the event
// as Unverified, even when signed fields are absent; a signed delivery must carry all of them. When filter is not empty, kinds outside it are reported as Filtered.
func Verify(p Payload, secret, signature string, filter ...Kind) Result {
	kind, ok := p.Kind()
	if !ok || !kind.Valid() {
		return Result{Outcome: UnknownEvent, Kind: kind}
	}
	if len(filter) > 0 && !slices.Contains(filter, kind) {
		return Result{Outcome: Filtered, Kind: kind}
	}

	event, err := Decode(p)
	if err != nil {
		return Result{Outcome: Malformed, Kind: kind, Err: err}
	}
	if signature == "" {
		return Result{Outcome: Unverified, Kind: kind, Event: event}
	}

	for _, field := range kind.SignedFields() {
		if _, present := p[field]; !present {
			return Result{Outcome: Malformed, Kind: kind, Err: &MissingFieldError{Kind: kind, Field: field}}
		}
	}
	if !hmac.Equal([]byte(signature), []byte(Sign(event, secret))) {
		return Result{Outcome: SignatureMismatch, Kind: kind}
	}
	return Result{Outcome: Verified, Kind: kind, Event: event}
}

// Sign returns the signature the service attaches to event.
func Sign(event Event, secret string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(event.signingInput()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// MissingFieldError reports a signed field absent from the payload.
type MissingFieldError struct {
	Kind  Kind
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing " + e.Field + " in " + string(e.Kind) + " payload"
}
