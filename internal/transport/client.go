// Package transport issues signed calls against the telephony REST API and classifies the outcome.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/isometry/zadarma-go/internal/helpers"
	"github.com/isometry/zadarma-go/internal/query"
	"github.com/isometry/zadarma-go/internal/signer"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	// ProductionURL is the production API origin.
	ProductionURL = "https://api.zadarma.com"
	// SandboxURL is the sandbox API origin.
	SandboxURL = "https://api-sandbox.zadarma.com"

	// FormatJSON is the default response format.
	FormatJSON = "json"
	// FormatXML asks the service for an XML body; application-level errors are not detected for it.
	FormatXML = "xml"

	statusError = "error"
)

// Verbs lists the accepted request verbs.
var Verbs = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

// Option defines a function type used to configure an instance of the Client struct.
type Option func(*Client)

// Client signs and sends API calls. It is safe for concurrent use.
type Client struct {
	creds      signer.Credentials
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	logLimits  *rate.Sometimes

	mu       sync.RWMutex
	httpCode int
	limits   RateLimits
}

// Response is the outcome of a single call.
type Response struct {
	StatusCode int
	Header     http.Header
	Limits     RateLimits
	Format     string
	Body       []byte
}

// Decode unmarshals a JSON body into v.
func (r *Response) Decode(v any) error {
	if r.Format != FormatJSON {
		return errors.Errorf("cannot decode %s response as json", r.Format)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Wrap(err, "failed to decode response body")
	}
	return nil
}

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewClient validates the credentials and options and returns a Client.
func NewClient(creds signer.Credentials, opts ...Option) (*Client, error) {
	_inst := &Client{creds: creds, baseURL: ProductionURL}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	_inst.logger = _inst.logger.With("component", "transport")

	if err := creds.Validate(); err != nil {
		return nil, &ConfigError{Reason: "credentials", Err: err}
	}
	u, err := url.Parse(_inst.baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &ConfigError{Reason: fmt.Sprintf("malformed base url %q", _inst.baseURL), Err: err}
	}
	_inst.baseURL = strings.TrimSuffix(_inst.baseURL, "/")

	hc := http.Client{}
	if _inst.httpClient != nil {
		hc = *_inst.httpClient
	}
	hc.Transport = newLoggingRoundTripper(_inst.logger, hc.Transport)
	_inst.httpClient = &hc
	_inst.logLimits = helpers.OnceAMinute()

	return _inst, nil
}

// Call signs params for method and sends them with the given verb. An empty verb means GET and an
// empty format means json. The caller's params are not modified.
//
// The returned *Response is non-nil whenever the service answered, including alongside an
// *HTTPError or *APIError, so per-call rate limits can be inspected on rejection too.
func (c *Client) Call(ctx context.Context, method string, params query.Params, verb, format string) (*Response, error) {
	verb = strings.ToUpper(strings.TrimSpace(verb))
	if verb == "" {
		verb = http.MethodGet
	}
	if !slices.Contains(Verbs, verb) {
		return nil, &ConfigError{Reason: fmt.Sprintf("invalid request type %q", verb)}
	}
	if format == "" {
		format = FormatJSON
	}
	if !strings.HasPrefix(method, "/") {
		return nil, &ConfigError{Reason: fmt.Sprintf("method %q must start with '/'", method)}
	}

	params = params.Clone().Set("format", format)
	encoded := query.Encode(params)

	endpoint := c.baseURL + method
	var body io.Reader
	if verb == http.MethodGet {
		endpoint += "?" + encoded
	} else {
		body = strings.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, verb, endpoint, body)
	if err != nil {
		return nil, &ConfigError{Reason: "failed to build request", Err: err}
	}
	req.Header.Set("Authorization", c.creds.Authorization(method, params))
	if verb != http.MethodGet {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	logger := c.logger.With(slog.String("method", method), slog.String("verb", verb))
	logger.Debug("calling api...")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("request failed", slog.Any("error", err))
		return nil, &TransportError{Op: "send", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	limits, limitsErr := ParseRateLimits(resp.Header)
	c.record(resp.StatusCode, limits)
	if limitsErr != nil {
		return nil, &TransportError{Op: "parse rate limits", Err: limitsErr}
	}
	c.logLimits.Do(func() {
		c.logger.Info("rate limits observed", slog.Any("limits", limits))
	})

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read", Err: err}
	}

	r := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Limits:     limits,
		Format:     format,
		Body:       raw,
	}
	if err = classify(r); err != nil {
		logger.Debug("call rejected", slog.Int("status", r.StatusCode), slog.Any("error", err))
		if IsUnreachable(err) {
			return nil, err
		}
		return r, err
	}
	logger.Debug("call succeeded", slog.Int("status", r.StatusCode))
	return r, nil
}

func classify(r *Response) error {
	var env envelope
	decodeErr := errors.New("not json")
	if r.Format == FormatJSON {
		decodeErr = json.NewDecoder(bytes.NewReader(r.Body)).Decode(&env)
	}

	if r.StatusCode >= http.StatusBadRequest {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(r.StatusCode)
		}
		if msg == "" {
			msg = "an error occurred"
		}
		return &HTTPError{StatusCode: r.StatusCode, Message: msg}
	}

	if r.Format != FormatJSON {
		return nil
	}
	if decodeErr != nil {
		return &TransportError{Op: "decode", Err: decodeErr}
	}
	if env.Status == statusError {
		msg := env.Message
		if msg == "" {
			msg = "unknown error"
		}
		return &APIError{StatusCode: r.StatusCode, Message: msg}
	}
	return nil
}

func (c *Client) record(code int, limits RateLimits) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.httpCode = code
	c.limits = limits
}

// HTTPCode returns the status code of the most recently completed call. With concurrent callers it
// reflects some recent call, not necessarily the last one issued.
func (c *Client) HTTPCode() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.httpCode
}

// Limits returns a copy of the most recently observed rate-limit snapshot. It is eventually stale
// under concurrency; use Response.Limits for per-call values.
func (c *Client) Limits() RateLimits {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.limits.Clone()
}
