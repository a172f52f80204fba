package transport

import (
	"log/slog"
	"net/http"
)

// WithSandbox targets the sandbox origin instead of production.
func WithSandbox(sandbox bool) Option {
	return func(c *Client) {
		if sandbox {
			c.baseURL = SandboxURL
		} else {
			c.baseURL = ProductionURL
		}
	}
}

// WithBaseURL overrides the service origin, e.g. for a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the *http.Client used for the exchange. Its transport is wrapped with trace logging.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom slog.Logger instance for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}
