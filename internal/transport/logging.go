package transport

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/isometry/zadarma-go/internal/helpers"
)

// maxLoggedBody bounds the request body written to trace logs.
const maxLoggedBody = 2048

// LevelTrace sits below slog.LevelDebug and is enabled with -vvv.
const LevelTrace = slog.Level(-8)

type loggingRoundTripper struct {
	logger *slog.Logger
	next   http.RoundTripper
}

func newLoggingRoundTripper(logger *slog.Logger, next http.RoundTripper) *loggingRoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingRoundTripper{logger: logger, next: next}
}

// RoundTrip logs the request and response. The Authorization header is never logged.
func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if !l.logger.Enabled(ctx, LevelTrace) {
		return l.next.RoundTrip(req)
	}

	l.logger.Log(ctx, LevelTrace, "sending request",
		slog.String("method", req.Method),
		slog.String("url", req.URL.Redacted()),
		slog.String("body", helpers.Truncate(requestBody(req), maxLoggedBody)))

	resp, err := l.next.RoundTrip(req)
	if err != nil {
		l.logger.Log(ctx, LevelTrace, "failed to send request", slog.Any("error", err))
		return nil, err
	}
	l.logger.Log(ctx, LevelTrace, "received response", slog.String("status", resp.Status))
	return resp, nil
}

// requestBody reads a copy of the request body. The request itself is left untouched, so bodies
// without GetBody are not logged.
func requestBody(req *http.Request) string {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return ""
	}
	defer func() { _ = body.Close() }()
	raw, _ := io.ReadAll(io.LimitReader(body, maxLoggedBody+1))
	return string(raw)
}
