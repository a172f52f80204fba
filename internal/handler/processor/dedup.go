package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/isometry/zadarma-go/internal/dedup"
	"github.com/isometry/zadarma-go/internal/helpers"
)

// SkipDuplicate is the skip reason of a redelivered notification.
const SkipDuplicate = "duplicate"

type dedupProcessor struct {
	logger *slog.Logger
	store  dedup.Store
	ttl    time.Duration
}

// NewDedupProcessor returns a Processor that skips deliveries already seen within ttl. When the
// store is unavailable the delivery is processed anyway.
func NewDedupProcessor(store dedup.Store, ttl time.Duration, opts ...Option) Processor {
	_inst := &dedupProcessor{store: store, ttl: ttl, logger: helpers.NewNoopLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *dedupProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.With("processor", "dedup")
}

func (p *dedupProcessor) Process(ctx context.Context, d *Delivery) error {
	logger := p.logger.With(slog.Any("delivery", d))
	key := d.Key()
	seen, err := p.store.Seen(ctx, key, p.ttl)
	if err != nil {
		logger.Warn("failed to check delivery key", slog.Any("error", err))
		return nil
	}
	if seen {
		logger.Info("duplicate delivery", slog.String("key", key), slog.Any("result", d.Result))
		d.Skip(SkipDuplicate)
		return nil
	}
	d.marked = true
	return nil
}

// Rollback forgets the delivery key, but only when this delivery recorded it.
func (p *dedupProcessor) Rollback(ctx context.Context, d *Delivery) error {
	if !d.marked {
		return nil
	}
	if err := p.store.Forget(ctx, d.Key()); err != nil {
		return err
	}
	d.marked = false
	return nil
}
