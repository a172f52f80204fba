// Package runtime adapts the webhook handler to the HTTP server and AWS Lambda entrypoints.
package runtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/isometry/zadarma-go/internal/handler"
	"github.com/isometry/zadarma-go/internal/helpers"
	"github.com/isometry/zadarma-go/internal/models"
	"github.com/pkg/errors"
)

// Supported Lambda payload types.
const (
	PayloadTypeAPIGatewayV1 = "api-gateway-v1"
	PayloadTypeAPIGatewayV2 = "api-gateway-v2"
	PayloadTypeLambdaURL    = "lambda-url"
)

// maxBodySize bounds request bodies read by ServeHTTP.
const maxBodySize = 1 << 20

// Option defines a function type used to configure an instance of the Runtime struct.
type Option func(*Runtime)

// WithLogger sets a custom slog.Logger instance for the Runtime.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithLambdaPayloadType sets the payload type expected by HandleEvent.
func WithLambdaPayloadType(payloadType string) Option {
	return func(r *Runtime) {
		r.payloadType = payloadType
	}
}

// Runtime wraps a Handler for each entrypoint.
type Runtime struct {
	*handler.Handler
	logger      *slog.Logger
	payloadType string
}

// NewRuntime creates a new runtime instance.
func NewRuntime(h *handler.Handler, opts ...Option) *Runtime {
	_inst := &Runtime{Handler: h}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	if _inst.payloadType == "" {
		_inst.payloadType = PayloadTypeAPIGatewayV2
	}
	return _inst
}

// ServeHTTP is the HTTP handler for the runtime.
func (r *Runtime) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	r.logger.Debug("received HTTP request...", slog.Any("requestor", req.RemoteAddr), slog.Any("method", req.Method), slog.Any("path", req.URL.Path))

	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodySize))
	if err != nil {
		r.logger.Error("failed to read request body", slog.Any("error", err))
		helpers.RespondHTTP(models.Response{StatusCode: http.StatusInternalServerError}, err, resp)
		return
	}

	result, err := r.Process(models.Request{
		Method:  req.Method,
		Body:    string(body),
		Headers: normaliseHeaders(req.Header),
		Query:   firstValues(req.URL.Query()),
	})
	r.logResult(result, err)
	helpers.RespondHTTP(result, err, resp)
}

// HandleEvent is the Lambda handler for HTTP invocations. The payload is decoded according to the
// configured payload type. Rejections are reported through the status code, never as an
// invocation error.
func (r *Runtime) HandleEvent(_ context.Context, raw json.RawMessage) (any, error) {
	r.logger.Info("received lambda request", slog.String("payloadType", r.payloadType))

	switch r.payloadType {
	case PayloadTypeAPIGatewayV1:
		var ev events.APIGatewayProxyRequest
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, errors.Wrap(err, "failed to decode api-gateway-v1 request")
		}
		result := r.processLambda(ev.HTTPMethod, ev.Body, ev.IsBase64Encoded, ev.Headers, ev.QueryStringParameters)
		return events.APIGatewayProxyResponse{Body: result.Body, Headers: result.Headers, StatusCode: result.StatusCode}, nil
	case PayloadTypeAPIGatewayV2:
		var ev events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, errors.Wrap(err, "failed to decode api-gateway-v2 request")
		}
		result := r.processLambda(ev.RequestContext.HTTP.Method, ev.Body, ev.IsBase64Encoded, ev.Headers, ev.QueryStringParameters)
		return events.APIGatewayV2HTTPResponse{Body: result.Body, Headers: result.Headers, StatusCode: result.StatusCode}, nil
	case PayloadTypeLambdaURL:
		var ev events.LambdaFunctionURLRequest
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, errors.Wrap(err, "failed to decode lambda-url request")
		}
		result := r.processLambda(ev.RequestContext.HTTP.Method, ev.Body, ev.IsBase64Encoded, ev.Headers, ev.QueryStringParameters)
		return events.LambdaFunctionURLResponse{Body: result.Body, Headers: result.Headers, StatusCode: result.StatusCode}, nil
	default:
		return nil, errors.Errorf("unsupported lambda payload type: %s", r.payloadType)
	}
}

// EventDetail is the detail of an EventBridge event carrying a delivery. When Payload is empty the
// whole detail is taken as the payload.
type EventDetail struct {
	Payload   json.RawMessage `json:"payload,omitempty"`
	Signature string          `json:"signature,omitempty"`
}

// HandleEventBridge is the Lambda handler for EventBridge invocations. A rejected delivery fails the
// invocation so that EventBridge may retry it or route it to a dead-letter queue.
func (r *Runtime) HandleEventBridge(_ context.Context, event models.Event) (models.Response, error) {
	r.logger.Info("received EventBridge event", slog.String("id", event.ID), slog.String("detailType", event.DetailType))

	raw := event.Detail
	if len(raw) == 0 {
		return models.Response{StatusCode: http.StatusUnprocessableEntity}, errors.New("empty event detail")
	}
	var detail EventDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		detail = EventDetail{}
	}
	payload := detail.Payload
	if len(payload) == 0 {
		payload = raw
	}

	headers := map[string]string{"content-type": "application/json"}
	if detail.Signature != "" {
		headers[strings.ToLower(r.SignatureHeader())] = detail.Signature
	}
	result, err := r.Process(models.Request{Method: http.MethodPost, Body: string(payload), Headers: headers})
	r.logResult(result, err)
	if err == nil && result.StatusCode >= http.StatusBadRequest {
		err = errors.Errorf("delivery rejected with status %d", result.StatusCode)
	}
	return result, err
}

func (r *Runtime) processLambda(method, body string, isBase64 bool, headers, query map[string]string) models.Response {
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			r.logger.Warn("failed to decode base64 body", slog.Any("error", err))
			return models.Response{Body: "malformed body", StatusCode: http.StatusBadRequest}
		}
		body = string(decoded)
	}

	lch := make(map[string]string, len(headers))
	for k, v := range headers {
		lch[strings.ToLower(k)] = v
	}
	result, err := r.Process(models.Request{Method: method, Body: body, Headers: lch, Query: query})
	r.logResult(result, err)
	return result
}

func (r *Runtime) logResult(result models.Response, err error) {
	logger := r.logger.With(slog.Int("statusCode", result.StatusCode))
	switch {
	case result.StatusCode >= http.StatusInternalServerError:
		logger.Error("request failed", slog.Any("error", err))
	case err != nil:
		logger.Warn("request rejected", slog.Any("error", err))
	default:
		logger.Debug("request handled")
	}
}

func normaliseHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			headers[strings.ToLower(k)] = v[0]
		}
	}
	return headers
}

func firstValues(values map[string][]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
