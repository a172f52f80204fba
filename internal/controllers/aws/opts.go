package aws

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// WithLogger sets a custom slog.Logger instance for the Controller struct to use for logging operations.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Controller) {
		a.logger = logger
	}
}

// WithContext sets the context used while loading the AWS configuration.
func WithContext(ctx context.Context) Option {
	return func(a *Controller) {
		a.ctx = ctx
	}
}

// WithConfig uses cfg instead of the default AWS configuration.
func WithConfig(cfg *aws.Config) Option {
	return func(a *Controller) {
		a.config = cfg
	}
}

func withClients(ssmClient ssmAPI, s3Client s3API, snsClient snsAPI) Option {
	return func(a *Controller) {
		a.ssmClient = ssmClient
		a.s3Client = s3Client
		a.snsClient = snsClient
	}
}
