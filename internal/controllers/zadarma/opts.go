package zadarma

import (
	"log/slog"
	"net/http"

	"github.com/isometry/zadarma-go/internal/signer"
)

// WithCredentials sets the static API credentials.
func WithCredentials(key, secret string) Option {
	return func(z *Controller) {
		z.creds = signer.Credentials{Key: key, Secret: secret}
	}
}

// WithAuthMode sets the authentication mode for a Controller instance using the given mode string.
func WithAuthMode(mode string) Option {
	return func(z *Controller) {
		z.authMode = mode
	}
}

// WithSSMKey sets the SSM key used for fetching credentials.
func WithSSMKey(key string) Option {
	return func(z *Controller) {
		z.ssmKey = key
	}
}

// WithSecretGetter sets the secret store used in ssm mode.
func WithSecretGetter(secrets SecretGetter) Option {
	return func(z *Controller) {
		z.secrets = secrets
	}
}

// WithWebhookSecret sets the secret used to verify webhook deliveries.
func WithWebhookSecret(secret string) Option {
	return func(z *Controller) {
		z.webhookSecret = secret
	}
}

// WithSandbox targets the sandbox origin.
func WithSandbox(sandbox bool) Option {
	return func(z *Controller) {
		z.sandbox = sandbox
	}
}

// WithBaseURL overrides the service origin.
func WithBaseURL(baseURL string) Option {
	return func(z *Controller) {
		z.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used by the transport.
func WithHTTPClient(client *http.Client) Option {
	return func(z *Controller) {
		z.httpClient = client
	}
}

// WithLogger sets a custom logger for the Controller instance to use for logging operations.
func WithLogger(logger *slog.Logger) Option {
	return func(z *Controller) {
		z.logger = logger
	}
}
