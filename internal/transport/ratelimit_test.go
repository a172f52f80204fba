package transport_test

import (
	"net/http"
	"testing"

	"github.com/isometry/zadarma-go/internal/transport"
	"github.com/stretchr/testify/assert"
)

func TestParseRateLimits(t *testing.T) {
	testCases := []struct {
		Name        string
		Header      http.Header
		Expected    transport.RateLimits
		ExpectError bool
	}{
		{
			Name:     "none",
			Header:   http.Header{"Content-Type": {"application/json"}},
			Expected: transport.RateLimits{},
		},
		{
			Name: "mixed_case",
			Header: http.Header{
				"X-RateLimit-Minute": {"58"},
				"x-ratelimit-Remaining": {"100"},
				"Content-Type":          {"application/json"},
			},
			Expected: transport.RateLimits{"minute": 58, "remaining": 100},
		},
		{
			Name:        "non_numeric",
			Header:      http.Header{"X-Ratelimit-Minute": {"58.5"}},
			ExpectError: true,
		},
		{
			Name:        "empty_value",
			Header:      http.Header{"X-Ratelimit-Minute": {""}},
			ExpectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			limits, err := transport.ParseRateLimits(tc.Header)
			if tc.ExpectError {
				assert.Error(t, err)
				assert.Nil(t, limits)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.Expected, limits)
		})
	}
}

func TestRateLimits_Clone(t *testing.T) {
	l := transport.RateLimits{"minute": 1}
	c := l.Clone()
	c["minute"] = 2

	assert.Equal(t, 1, l["minute"])
	assert.Equal(t, transport.RateLimits{}, transport.RateLimits(nil).Clone())
}
