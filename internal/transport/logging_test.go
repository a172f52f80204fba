package transport

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestLoggingRoundTripper_LeavesRequestUntouched(t *testing.T) {
	testCases := []struct {
		Name       string
		Level      slog.Level
		Body       string
		ExpectBody string
	}{
		{
			Name:       "trace",
			Level:      LevelTrace,
			Body:       "number=79990000000",
			ExpectBody: `"body":"number=79990000000"`,
		},
		{
			Name:       "trace_long_body",
			Level:      LevelTrace,
			Body:       strings.Repeat("a", 3*maxLoggedBody),
			ExpectBody: `"body":"` + strings.Repeat("a", maxLoggedBody-3) + `..."`,
		},
		{
			Name:  "debug",
			Level: slog.LevelDebug,
			Body:  "format=json",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: tc.Level}))

			req, err := http.NewRequest(http.MethodPost, "https://api.example.test/v1/sms/send/", strings.NewReader(tc.Body))
			require.NoError(t, err)
			original := req.Body

			rt := newLoggingRoundTripper(logger, roundTripperFunc(func(got *http.Request) (*http.Response, error) {
				assert.Same(t, req, got)
				body, err := io.ReadAll(got.Body)
				require.NoError(t, err)
				assert.Equal(t, tc.Body, string(body))
				return &http.Response{Status: "200 OK", StatusCode: http.StatusOK, Body: http.NoBody}, nil
			}))

			_, err = rt.RoundTrip(req)
			require.NoError(t, err)
			assert.Equal(t, original, req.Body, "the request body must not be replaced")
			if tc.ExpectBody == "" {
				assert.NotContains(t, buf.String(), "sending request")
				return
			}
			assert.Contains(t, buf.String(), tc.ExpectBody)
		})
	}
}

func TestLoggingRoundTripper_BodyWithoutGetBody(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: LevelTrace}))

	req, err := http.NewRequest(http.MethodPost, "https://api.example.test/v1/sms/send/", io.NopCloser(strings.NewReader("format=json")))
	require.NoError(t, err)
	require.Nil(t, req.GetBody)

	rt := newLoggingRoundTripper(logger, roundTripperFunc(func(got *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(got.Body)
		require.NoError(t, err)
		assert.Equal(t, "format=json", string(body))
		return &http.Response{Status: "200 OK", StatusCode: http.StatusOK, Body: http.NoBody}, nil
	}))

	_, err = rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"body":""`)
}
