// Package signer derives the Authorization credential for outbound API requests.
//
// The signature is computed as
//
//	params    = canonical(sorted(signable(parameters)))
//	base      = method + params + hex(md5(params))
//	signature = base64(hex(hmac-sha1(secret, base)))
//
// Note that the base64 step encodes the textual hex digest, not the raw HMAC bytes.
package signer

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // required by the remote signature scheme
	"crypto/sha1" //nolint:gosec // required by the remote signature scheme
	"encoding/base64"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/isometry/zadarma-go/internal/query"
	"github.com/pkg/errors"
)

const redacted = "[REDACTED]"

// Credentials holds the API key and secret. The secret never leaves this value except
// as an HMAC key, and both fields are redacted from formatting and logging.
type Credentials struct {
	Key    string `json:"-" yaml:"-"`
	Secret string `json:"-" yaml:"-"`
}

// NewCredentials validates and returns a Credentials value.
func NewCredentials(key, secret string) (Credentials, error) {
	c := Credentials{Key: key, Secret: secret}
	return c, c.Validate()
}

// Validate reports whether the credentials can produce a well-formed Authorization header.
func (c Credentials) Validate() error {
	switch {
	case strings.TrimSpace(c.Key) == "":
		return errors.New("missing API key")
	case strings.TrimSpace(c.Secret) == "":
		return errors.New("missing API secret")
	case strings.ContainsAny(c.Key, ": \t\r\n"):
		return errors.Errorf("malformed API key: must not contain ':' or whitespace")
	}
	return nil
}

// Authorization returns the Authorization header value for a call to method.
func (c Credentials) Authorization(method string, params query.Params) string {
	return Sign(method, params, c.Key, c.Secret)
}

// String implements fmt.Stringer.
func (c Credentials) String() string {
	return redacted
}

// GoString implements fmt.GoStringer.
func (c Credentials) GoString() string {
	return redacted
}

// LogValue implements slog.LogValuer.
func (c Credentials) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// Sign returns the Authorization header value "{key}:{signature}".
func Sign(method string, params query.Params, key, secret string) string {
	return key + ":" + Signature(method, params, secret)
}

// Signature returns the base64-encoded request signature.
func Signature(method string, params query.Params, secret string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(SignatureBase(method, params)))
	return base64.StdEncoding.EncodeToString([]byte(hex.EncodeToString(mac.Sum(nil))))
}

// SignatureBase returns the exact byte sequence fed into the HMAC.
func SignatureBase(method string, params query.Params) string {
	paramsString := CanonicalParams(params)
	sum := md5.Sum([]byte(paramsString)) //nolint:gosec
	return method + paramsString + hex.EncodeToString(sum[:])
}

// CanonicalParams returns the canonical encoding of the signable parameters, sorted by key.
func CanonicalParams(params query.Params) string {
	return query.Encode(params.Signable().Sorted())
}
