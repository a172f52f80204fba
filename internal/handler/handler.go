// Package handler turns inbound webhook requests into responses: it answers the endpoint ownership
// check, parses and verifies deliveries and runs the processors over accepted ones.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/isometry/zadarma-go/internal/handler/processor"
	"github.com/isometry/zadarma-go/internal/helpers"
	"github.com/isometry/zadarma-go/internal/models"
	"github.com/isometry/zadarma-go/internal/webhook"
	"github.com/pkg/errors"
)

// Option defines a function type used to configure an instance of the Handler struct.
type Option func(*Handler)

// Handler processes webhook requests.
type Handler struct {
	ctx              context.Context
	logger           *slog.Logger
	webhookSecret    string
	events           []webhook.Kind
	signatureHeader  string
	requireSignature bool
	processors       []processor.Processor

	verifier *webhook.Verifier
}

// NewWebhookHandler returns a Handler. Without a webhook secret, signatures are not checked and
// every applicable delivery is accepted as unverified.
func NewWebhookHandler(opts ...Option) (*Handler, error) {
	_inst := &Handler{}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.ctx == nil {
		_inst.ctx = context.Background()
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	if _inst.signatureHeader == "" {
		_inst.signatureHeader = webhook.SignatureHeader
	}
	for _, k := range _inst.events {
		if !k.Valid() {
			return nil, errors.Errorf("unsupported event: %s", k)
		}
	}
	if _inst.requireSignature && _inst.webhookSecret == "" {
		return nil, errors.New("a webhook secret is required to enforce signatures")
	}
	_inst.verifier = webhook.NewVerifier(_inst.webhookSecret, _inst.events...)
	return _inst, nil
}

// Process handles a single request. The returned error, if any, explains a non-2xx response.
func (h *Handler) Process(req models.Request) (models.Response, error) {
	logger := h.logger

	if echo, ok := req.Query[webhook.EchoParameter]; ok {
		logger.Info("answering endpoint check")
		return models.Response{
			Body:       echo,
			Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
			StatusCode: http.StatusOK,
		}, nil
	}
	if req.Method != "" && req.Method != http.MethodPost {
		logger.Debug("rejecting request", slog.String("method", req.Method), slog.String("reason", "method not allowed"))
		return respond(http.StatusMethodNotAllowed, "method not allowed"), errors.Errorf("method %s not allowed", req.Method)
	}

	payload, err := webhook.ParseBody(req.Header("Content-Type"), []byte(req.Body))
	if err != nil {
		logger.Warn("failed to parse payload", slog.Any("error", err))
		if errors.Is(err, webhook.ErrUnsupportedContentType) {
			return respond(http.StatusUnsupportedMediaType, "unsupported content type"), err
		}
		return respond(http.StatusUnprocessableEntity, "malformed payload"), &MalformedPayloadError{Err: err}
	}

	signature := ""
	if h.webhookSecret != "" {
		signature = req.Header(h.signatureHeader)
	}
	result := h.verifier.Verify(payload, signature)
	logger = logger.With(slog.Any("result", result))

	switch result.Outcome {
	case webhook.UnknownEvent, webhook.Filtered:
		logger.Debug("ignoring delivery")
		return respond(http.StatusAccepted, "ignored"), nil
	case webhook.Malformed:
		logger.Warn("malformed delivery")
		return respond(http.StatusUnprocessableEntity, "malformed payload"), &MalformedPayloadError{Err: result.Err}
	case webhook.SignatureMismatch:
		logger.Warn("signature mismatch")
		return respond(http.StatusForbidden, "invalid signature"), ErrSignatureMismatch
	case webhook.Unverified:
		if h.requireSignature {
			logger.Warn("missing signature")
			return respond(http.StatusUnauthorized, "missing signature"), ErrMissingSignature
		}
	}

	delivery := processor.NewDelivery(payload, result)
	logger = logger.With(slog.String("deliveryId", delivery.ID))
	if err = processor.Process(h.ctx, logger, delivery, h.processors...); err != nil {
		logger.Error("failed to process delivery", slog.Any("error", err))
		return respond(http.StatusInternalServerError, "processing failed"), &ProcessingError{Err: err}
	}
	if reason, skipped := delivery.Skipped(); skipped {
		return respond(http.StatusAccepted, reason), nil
	}

	logger.Info("delivery accepted")
	return respond(http.StatusOK, "accepted"), nil
}

// SignatureHeader returns the name of the header carrying the delivery signature.
func (h *Handler) SignatureHeader() string {
	return h.signatureHeader
}

func respond(status int, body string) models.Response {
	return models.Response{Body: body, StatusCode: status}
}
