package handler

import (
	"context"
	"log/slog"

	"github.com/isometry/zadarma-go/internal/handler/processor"
	"github.com/isometry/zadarma-go/internal/webhook"
)

// WithLogger sets the logger instance for the handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithContext sets the context passed to the processors.
func WithContext(ctx context.Context) Option {
	return func(h *Handler) {
		h.ctx = ctx
	}
}

// WithWebhookSecret configures the handler with a webhook secret for request validation.
func WithWebhookSecret(secret string) Option {
	return func(h *Handler) {
		h.webhookSecret = secret
	}
}

// WithEvents restricts the handled events. Other events are acknowledged and ignored.
func WithEvents(events ...webhook.Kind) Option {
	return func(h *Handler) {
		h.events = events
	}
}

// WithSignatureHeader sets the header carrying the delivery signature.
func WithSignatureHeader(header string) Option {
	return func(h *Handler) {
		h.signatureHeader = header
	}
}

// WithRequireSignature rejects unsigned deliveries.
func WithRequireSignature(require bool) Option {
	return func(h *Handler) {
		h.requireSignature = require
	}
}

// WithProcessors sets the processors run over accepted deliveries, in order.
func WithProcessors(processors ...processor.Processor) Option {
	return func(h *Handler) {
		h.processors = processors
	}
}
