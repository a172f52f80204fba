// Package processor provides a generic interface for processing accepted webhook deliveries using a
// list of processors.
package processor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/isometry/zadarma-go/internal/helpers"
	"github.com/isometry/zadarma-go/internal/webhook"
	"github.com/pkg/errors"
)

// Option is a function that applies an option to a Processor.
type Option = func(Processor)

// WithLogger sets the logger of the processor.
func WithLogger(logger *slog.Logger) Option {
	return func(p Processor) {
		p.SetLogger(logger)
	}
}

// Processor is an interface that defines a method to process a delivery.
type Processor interface {
	SetLogger(logger *slog.Logger)
	Process(ctx context.Context, d *Delivery) error
}

// Rollbacker is implemented by processors whose effect must be undone when a later processor fails.
type Rollbacker interface {
	Rollback(ctx context.Context, d *Delivery) error
}

// Delivery is a verified webhook delivery travelling through the processors.
type Delivery struct {
	ID         string
	ReceivedAt time.Time
	Payload    webhook.Payload
	Result     webhook.Result

	skipReason string
	// marked is set by the dedup processor once it has recorded the delivery key.
	marked bool
}

// NewDelivery wraps an accepted verification result.
func NewDelivery(p webhook.Payload, result webhook.Result) *Delivery {
	return &Delivery{
		ID:         uuid.NewString(),
		ReceivedAt: time.Now().UTC(),
		Payload:    p,
		Result:     result,
	}
}

// Key identifies the delivery content. Redeliveries of the same notification share a key.
func (d *Delivery) Key() string {
	sum := sha256.Sum256([]byte(d.Payload.Encode()))
	return hex.EncodeToString(sum[:])
}

// Kind returns the event kind.
func (d *Delivery) Kind() webhook.Kind {
	return d.Result.Kind
}

// CallID returns the PBX call ID of the event, if any.
func (d *Delivery) CallID() string {
	if d.Result.Event == nil {
		return ""
	}
	return d.Result.Event.CallID()
}

// LogValue implements slog.LogValuer.
func (d *Delivery) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("id", d.ID), slog.String("event", string(d.Kind()))}
	if id := d.CallID(); id != "" {
		attrs = append(attrs, slog.String("pbxCallID", id))
	}
	return slog.GroupValue(attrs...)
}

// Skip stops the processing of the delivery. Later processors are not run.
func (d *Delivery) Skip(reason string) {
	d.skipReason = reason
}

// Skipped reports whether a processor stopped the delivery, and why.
func (d *Delivery) Skipped() (string, bool) {
	return d.skipReason, d.skipReason != ""
}

type document struct {
	ID         string          `json:"id"`
	ReceivedAt time.Time       `json:"receivedAt"`
	Event      webhook.Kind    `json:"event"`
	Outcome    string          `json:"outcome"`
	CallID     string          `json:"pbxCallId,omitempty"`
	Payload    webhook.Payload `json:"payload"`
	Decoded    webhook.Event   `json:"decoded,omitempty"`
}

// MarshalJSON renders the delivery as archived and forwarded.
func (d *Delivery) MarshalJSON() ([]byte, error) {
	return json.Marshal(document{
		ID:         d.ID,
		ReceivedAt: d.ReceivedAt,
		Event:      d.Kind(),
		Outcome:    d.Result.Outcome.String(),
		CallID:     d.CallID(),
		Payload:    d.Payload,
		Decoded:    d.Result.Event,
	})
}

// Process runs the processors in order. It stops at the first error or when a processor skips the
// delivery. On error, processors that already ran and implement Rollbacker are rolled back.
// The processors may be shared by concurrent deliveries and are never modified here: logger only
// receives the chain's own records, and may be nil.
func Process(ctx context.Context, logger *slog.Logger, d *Delivery, processors ...Processor) error {
	if logger == nil {
		logger = helpers.NewNoopLogger()
	}
	for i, p := range processors {
		if err := p.Process(ctx, d); err != nil {
			rollback(ctx, logger, d, processors[:i])
			return err
		}
		if reason, skipped := d.Skipped(); skipped {
			logger.Debug("delivery skipped", slog.String("reason", reason))
			return nil
		}
	}
	return nil
}

func rollback(ctx context.Context, logger *slog.Logger, d *Delivery, done []Processor) {
	for i := len(done) - 1; i >= 0; i-- {
		r, ok := done[i].(Rollbacker)
		if !ok {
			continue
		}
		if err := r.Rollback(ctx, d); err != nil {
			logger.Warn("failed to roll back processor", slog.Any("error", err))
		}
	}
}

func applyOpts(m Processor, opts ...Option) {
	for _, opt := range opts {
		opt(m)
	}
}

var errMissingTarget = errors.New("missing target")
