package transport

import (
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// RateLimitHeaderPrefix marks quota telemetry headers, compared case-insensitively.
const RateLimitHeaderPrefix = "x-ratelimit-"

// RateLimits maps a limit name (the lower-cased header suffix) to its reported value.
type RateLimits map[string]int

// ParseRateLimits extracts the rate-limit snapshot from response headers. A header whose value is
// not an integer fails the whole parse.
func ParseRateLimits(header http.Header) (RateLimits, error) {
	limits := make(RateLimits)
	for name, values := range header {
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, RateLimitHeaderPrefix) || len(values) == 0 {
			continue
		}
		raw := strings.TrimSpace(values[0])
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "non-numeric rate limit header %s=%q", name, raw)
		}
		limits[strings.TrimPrefix(lower, RateLimitHeaderPrefix)] = n
	}
	return limits, nil
}

// Clone returns an independent copy.
func (l RateLimits) Clone() RateLimits {
	if l == nil {
		return RateLimits{}
	}
	return maps.Clone(l)
}

// LogValue implements slog.LogValuer.
func (l RateLimits) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(l))
	for _, k := range slices.Sorted(maps.Keys(l)) {
		attrs = append(attrs, slog.Int(k, l[k]))
	}
	return slog.GroupValue(attrs...)
}
