package processor

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/isometry/zadarma-go/internal/helpers"
	"github.com/pkg/errors"
)

// Publisher publishes a message to a topic. *aws.Controller satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, message []byte, attributes map[string]string) (string, error)
}

type snsForwarderProcessor struct {
	logger    *slog.Logger
	publisher Publisher
	topic     string
}

// NewSNSForwarderProcessor returns a Processor that publishes each delivery to an SNS topic. The
// event kind, outcome and PBX call ID are set as message attributes for subscription filtering.
func NewSNSForwarderProcessor(publisher Publisher, topic string, opts ...Option) Processor {
	_inst := &snsForwarderProcessor{publisher: publisher, topic: topic, logger: helpers.NewNoopLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *snsForwarderProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.With("processor", "sns-forwarder")
}

func (p *snsForwarderProcessor) Process(ctx context.Context, d *Delivery) error {
	logger := p.logger.With(slog.Any("delivery", d))
	if p.topic == "" {
		return errors.Wrap(errMissingTarget, "sns topic")
	}
	message, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "failed to marshal delivery")
	}
	id, err := p.publisher.Publish(ctx, p.topic, message, map[string]string{
		"event":       string(d.Kind()),
		"outcome":     d.Result.Outcome.String(),
		"pbx_call_id": d.CallID(),
	})
	if err != nil {
		logger.Warn("failed to forward delivery to SNS", slog.Any("error", err))
		return err
	}
	logger.Debug("delivery forwarded", slog.String("topic", p.topic), slog.String("messageId", id))
	return nil
}
