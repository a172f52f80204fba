// Package api exposes the telephony REST endpoints as typed methods over a signed transport.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/isometry/zadarma-go/internal/helpers"
	"github.com/isometry/zadarma-go/internal/query"
	"github.com/isometry/zadarma-go/internal/transport"
	"github.com/pkg/errors"
)

// Version is the API version prefixed to every method path.
const Version = "v1"

// DateTimeLayout is the layout of the start and end filters of the statistics endpoints.
const DateTimeLayout = "2006-01-02 15:04:05"

var (
	// ErrWrongNumberFormat is returned when a phone or extension number contains no digits.
	ErrWrongNumberFormat = errors.New("wrong number format")
	// ErrMissingCallID is returned when neither a call ID nor a PBX call ID is given.
	ErrMissingCallID = errors.New("call id or pbx call id required")
)

// Caller issues a signed call. *transport.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, method string, params query.Params, verb, format string) (*transport.Response, error)
}

// Option defines a function type used to configure an instance of the API struct.
type Option func(*API)

// WithLogger sets a custom slog.Logger instance for the API.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.logger = logger
	}
}

// API shapes endpoint parameters and decodes responses. Signing, transport and error
// classification are left to the Caller.
type API struct {
	caller Caller
	logger *slog.Logger
}

// New returns an API issuing its calls through caller.
func New(caller Caller, opts ...Option) *API {
	_inst := &API{caller: caller}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	_inst.logger = _inst.logger.With("component", "api")
	return _inst
}

// MethodPath returns the versioned path of an API method, e.g. "/v1/info/balance/".
func MethodPath(method string) string {
	return "/" + Version + "/" + strings.Trim(method, "/") + "/"
}

// Raw issues a call against an arbitrary method and returns the undecoded response.
func (a *API) Raw(ctx context.Context, method string, params query.Params, verb string) (*transport.Response, error) {
	a.logger.Debug("requesting...", slog.String("method", method), slog.String("verb", verb))
	return a.caller.Call(ctx, MethodPath(method), params, verb, transport.FormatJSON)
}

func (a *API) request(ctx context.Context, method string, params query.Params, verb string, out any) error {
	resp, err := a.Raw(ctx, method, params, verb)
	if err != nil {
		return errors.Wrapf(err, "%s %s", verb, method)
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

func requestInfo[T any](ctx context.Context, a *API, method string, params query.Params, verb string) (T, error) {
	var envelope struct {
		Info T `json:"info"`
	}
	err := a.request(ctx, method, params, verb, &envelope)
	return envelope.Info, err
}

func requestInto[T any](ctx context.Context, a *API, method string, params query.Params, verb string) (*T, error) {
	out := new(T)
	if err := a.request(ctx, method, params, verb, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FilterNumber strips every non-digit from number.
func FilterNumber(number string) (string, error) {
	filtered := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if filtered == "" {
		return "", errors.Wrapf(ErrWrongNumberFormat, "%q", number)
	}
	return filtered, nil
}

func filterNumbers(numbers ...string) ([]string, error) {
	out := make([]string, 0, len(numbers))
	for _, n := range numbers {
		f, err := FilterNumber(n)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// params collects request parameters in insertion order, dropping zero values.
type params struct {
	query.Params
}

func (p *params) add(key string, value any) *params {
	p.Params = append(p.Params, query.Param{Key: key, Value: value})
	return p
}

func (p *params) addString(key, value string) *params {
	if value != "" {
		p.add(key, value)
	}
	return p
}

func (p *params) addInt(key string, value int) *params {
	if value != 0 {
		p.add(key, value)
	}
	return p
}

func (p *params) addTime(key string, value time.Time) *params {
	if !value.IsZero() {
		p.add(key, value.Format(DateTimeLayout))
	}
	return p
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

const (
	get  = http.MethodGet
	post = http.MethodPost
	put  = http.MethodPut
)
