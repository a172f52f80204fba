package cmd

import (
	"context"
	"strings"

	"github.com/isometry/zadarma-go/internal/config"
	awsctl "github.com/isometry/zadarma-go/internal/controllers/aws"
	"github.com/isometry/zadarma-go/internal/controllers/zadarma"
	"github.com/isometry/zadarma-go/internal/dedup"
	"github.com/isometry/zadarma-go/internal/handler"
	"github.com/isometry/zadarma-go/internal/handler/processor"
	"github.com/isometry/zadarma-go/internal/runtime"
	"github.com/isometry/zadarma-go/internal/webhook"
	"github.com/pkg/errors"
)

// Dedup backends.
const (
	dedupNone   = "none"
	dedupMemory = "memory"
	dedupRedis  = "redis"
)

// needsAWS reports whether the configuration uses any AWS service.
func needsAWS() bool {
	return strings.EqualFold(config.Zadarma.AuthMode, zadarma.AuthModeSSM) || config.Archive.Enabled || config.Forward.Enabled
}

func newAWSController(ctx context.Context) (*awsctl.Controller, error) {
	if !needsAWS() {
		return nil, nil
	}
	logger.Debug("creating AWS controller...")
	return awsctl.NewController(
		awsctl.WithContext(ctx),
		awsctl.WithLogger(logger))
}

func newZadarmaController(aws *awsctl.Controller) (*zadarma.Controller, error) {
	opts := []zadarma.Option{
		zadarma.WithAuthMode(config.Zadarma.AuthMode),
		zadarma.WithCredentials(config.Zadarma.Key, config.Zadarma.Secret),
		zadarma.WithSSMKey(config.Zadarma.SSMKey),
		zadarma.WithWebhookSecret(config.Webhook.Secret),
		zadarma.WithSandbox(config.Zadarma.Sandbox),
		zadarma.WithBaseURL(config.Zadarma.BaseURL),
		zadarma.WithLogger(logger),
	}
	if aws != nil {
		opts = append(opts, zadarma.WithSecretGetter(aws))
	}
	return zadarma.NewController(opts...)
}

func newDedupStore(ctx context.Context) (dedup.Store, error) {
	switch strings.ToLower(strings.TrimSpace(config.Dedup.Backend)) {
	case "", dedupNone:
		return nil, nil
	case dedupMemory:
		return dedup.NewMemoryStore(), nil
	case dedupRedis:
		logger.Debug("connecting to redis...", "address", config.Dedup.Redis.Address)
		return dedup.NewRedisStore(ctx, dedup.RedisOptions{
			Address:  config.Dedup.Redis.Address,
			Password: config.Dedup.Redis.Password,
			DB:       config.Dedup.Redis.DB,
			Prefix:   config.Dedup.Redis.Prefix,
		})
	default:
		return nil, errors.Errorf("unsupported dedup backend: %s", config.Dedup.Backend)
	}
}

func newProcessors(ctx context.Context, aws *awsctl.Controller) ([]processor.Processor, error) {
	plog := logger.With("component", "processor")

	var processors []processor.Processor
	store, err := newDedupStore(ctx)
	if err != nil {
		return nil, err
	}
	if store != nil {
		processors = append(processors, processor.NewDedupProcessor(store, config.Dedup.TTL, processor.WithLogger(plog)))
	}
	processors = append(processors, processor.NewLogProcessor(processor.WithLogger(plog)))
	if config.Archive.Enabled {
		processors = append(processors, processor.NewS3ArchiveProcessor(aws, config.Archive.Bucket, config.Archive.Prefix, processor.WithLogger(plog)))
	}
	if config.Forward.Enabled {
		processors = append(processors, processor.NewSNSForwarderProcessor(aws, config.Forward.Topic, processor.WithLogger(plog)))
	}
	return processors, nil
}

func parseEvents(events []string) []webhook.Kind {
	kinds := make([]webhook.Kind, 0, len(events))
	for _, e := range events {
		if e = strings.ToUpper(strings.TrimSpace(e)); e != "" {
			kinds = append(kinds, webhook.Kind(e))
		}
	}
	return kinds
}

// setup builds the webhook runtime from the configuration.
func setup(ctx context.Context) (*runtime.Runtime, error) {
	aws, err := newAWSController(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create AWS controller")
	}
	zc, err := newZadarmaController(aws)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create zadarma controller")
	}
	secret, err := zc.WebhookSecret(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve webhook secret")
	}
	if secret == "" {
		logger.Warn("no webhook secret configured. signatures are not verified")
	}

	processors, err := newProcessors(ctx, aws)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create processors")
	}

	logger.Debug("creating webhook handler...")
	hdl, err := handler.NewWebhookHandler(
		handler.WithWebhookSecret(secret),
		handler.WithEvents(parseEvents(config.Webhook.Events)...),
		handler.WithSignatureHeader(config.Webhook.SignatureHeader),
		handler.WithRequireSignature(config.Webhook.RequireSignature),
		handler.WithProcessors(processors...),
		handler.WithContext(ctx),
		handler.WithLogger(logger.With("component", "webhook-handler")))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create webhook handler")
	}

	logger.Debug("creating runtime...")
	return runtime.NewRuntime(hdl,
		runtime.WithLambdaPayloadType(config.Lambda.PayloadType),
		runtime.WithLogger(logger.With("component", "runtime"))), nil
}
