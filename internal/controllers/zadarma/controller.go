// Package zadarma provides a Controller for API credentials management and client construction.
package zadarma

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/isometry/zadarma-go/internal/api"
	"github.com/isometry/zadarma-go/internal/helpers"
	"github.com/isometry/zadarma-go/internal/signer"
	"github.com/isometry/zadarma-go/internal/transport"
	"github.com/pkg/errors"
)

// Supported authentication modes.
const (
	AuthModeStatic = "static"
	AuthModeSSM    = "ssm"
)

// SecretGetter reads a parameter from a secret store. *aws.Controller satisfies it.
type SecretGetter interface {
	GetSecret(ctx context.Context, key string, encrypted bool) (string, error)
}

// Option is a functional option used to configure or modify the properties of a Controller instance.
type Option func(*Controller)

// storedCredentials is the JSON document kept in SSM.
type storedCredentials struct {
	Key           string `json:"key"`
	Secret        string `json:"secret"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// Controller resolves credentials according to the authentication mode and hands out API clients
// built from them. Clients are cached once the credentials are known.
type Controller struct {
	authMode   string
	ssmKey     string
	sandbox    bool
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	secrets    SecretGetter

	mu            sync.Mutex
	creds         signer.Credentials
	webhookSecret string
	client        *transport.Client
	api           *api.API
}

// NewController initializes a new Controller with the provided options, setting defaults where necessary.
func NewController(opts ...Option) (*Controller, error) {
	_inst := new(Controller)
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	_inst.authMode = strings.TrimSpace(strings.ToLower(_inst.authMode))
	if _inst.authMode == "" {
		_inst.authMode = AuthModeStatic
	}
	_inst.logger = _inst.logger.With("controller", "zadarma", "authMode", _inst.authMode)

	switch _inst.authMode {
	case AuthModeStatic:
	case AuthModeSSM:
		if _inst.ssmKey == "" {
			return nil, errors.New("missing SSM key for ssm auth mode")
		}
		if _inst.secrets == nil {
			return nil, errors.New("missing secret store for ssm auth mode")
		}
	default:
		return nil, errors.Errorf("unsupported auth mode: %s", _inst.authMode)
	}
	return _inst, nil
}

// RetrieveCredentials resolves the API credentials. In ssm mode they are fetched once and cached.
func (z *Controller) RetrieveCredentials(ctx context.Context) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.retrieveCredentials(ctx)
}

func (z *Controller) retrieveCredentials(ctx context.Context) error {
	switch z.authMode {
	case AuthModeStatic:
		if err := z.creds.Validate(); err != nil {
			return errors.Wrap(err, "missing [ZADARMA_KEY] or [ZADARMA_SECRET]")
		}
		return nil
	case AuthModeSSM:
		if z.creds.Validate() == nil {
			z.logger.Debug("using cached credentials...")
			return nil
		}
		z.logger.Debug("retrieving credentials from SSM...")
		secret, err := z.secrets.GetSecret(ctx, z.ssmKey, true)
		if err != nil {
			return errors.Wrap(err, "failed to fetch credentials from SSM")
		}
		var stored storedCredentials
		if err = json.Unmarshal([]byte(secret), &stored); err != nil {
			return errors.Wrap(err, "failed to unmarshal credentials")
		}
		creds, err := signer.NewCredentials(stored.Key, stored.Secret)
		if err != nil {
			return errors.Wrap(err, "invalid credentials in SSM")
		}
		z.creds = creds
		if stored.WebhookSecret != "" {
			z.webhookSecret = stored.WebhookSecret
		}
		return nil
	}
	return errors.Errorf("unsupported auth mode: %s", z.authMode)
}

// Transport returns the signed transport client, creating it on first use.
func (z *Controller) Transport(ctx context.Context) (*transport.Client, error) {
	z.mu.Lock()
	defer z.mu.Unlock()

	if z.client != nil {
		z.logger.Debug("cache hit. using cached client...")
		return z.client, nil
	}
	if err := z.retrieveCredentials(ctx); err != nil {
		return nil, err
	}

	z.logger.Debug("cache miss. spawning client...", slog.Bool("sandbox", z.sandbox))
	opts := []transport.Option{
		transport.WithSandbox(z.sandbox),
		transport.WithLogger(z.logger),
	}
	if z.baseURL != "" {
		opts = append(opts, transport.WithBaseURL(z.baseURL))
	}
	if z.httpClient != nil {
		opts = append(opts, transport.WithHTTPClient(z.httpClient))
	}
	client, err := transport.NewClient(z.creds, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create transport")
	}
	z.client = client
	z.api = api.New(client, api.WithLogger(z.logger))
	return client, nil
}

// API returns the endpoint layer over the cached transport.
func (z *Controller) API(ctx context.Context) (*api.API, error) {
	if _, err := z.Transport(ctx); err != nil {
		return nil, err
	}
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.api, nil
}

// WebhookSecret returns the secret used to verify webhook deliveries. In ssm mode a webhook_secret
// stored alongside the API credentials takes precedence over the configured one. Without either,
// deliveries are verified with the API secret.
func (z *Controller) WebhookSecret(ctx context.Context) (string, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.authMode == AuthModeSSM {
		if err := z.retrieveCredentials(ctx); err != nil {
			return "", err
		}
	}
	if z.webhookSecret == "" {
		return z.creds.Secret, nil
	}
	return z.webhookSecret, nil
}
