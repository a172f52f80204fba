package processor

import (
	"context"
	"log/slog"

	"github.com/isometry/zadarma-go/internal/helpers"
)

type logProcessor struct {
	logger *slog.Logger
}

// NewLogProcessor returns a Processor that logs each delivery at info level.
func NewLogProcessor(opts ...Option) Processor {
	_inst := &logProcessor{logger: helpers.NewNoopLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *logProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.With("processor", "log")
}

func (p *logProcessor) Process(_ context.Context, d *Delivery) error {
	p.logger.Info("webhook event",
		slog.Any("delivery", d),
		slog.Any("result", d.Result),
		slog.Any("payload", d.Payload))
	return nil
}
