package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/isometry/zadarma-go/internal/api"
	"github.com/isometry/zadarma-go/internal/query"
	"github.com/isometry/zadarma-go/internal/signer"
	"github.com/isometry/zadarma-go/internal/transport"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Method string
	Params query.Params
	Verb   string
	Format string
}

type fakeCaller struct {
	calls []recordedCall
	body  string
	err   error
}

func (f *fakeCaller) Call(_ context.Context, method string, params query.Params, verb, format string) (*transport.Response, error) {
	f.calls = append(f.calls, recordedCall{Method: method, Params: params, Verb: verb, Format: format})
	if f.err != nil {
		return nil, f.err
	}
	return &transport.Response{StatusCode: http.StatusOK, Format: format, Body: []byte(f.body)}, nil
}

func (f *fakeCaller) last(t *testing.T) recordedCall {
	t.Helper()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

func TestFilterNumber(t *testing.T) {
	testCases := []struct {
		Name        string
		Input       string
		Expected    string
		ExpectError bool
	}{
		{Name: "digits", Input: "79990000000", Expected: "79990000000"},
		{Name: "formatted", Input: "+7 (999) 000-00-00", Expected: "79990000000"},
		{Name: "non_ascii_digits", Input: "٣12", Expected: "12"},
		{Name: "empty", Input: "", ExpectError: true},
		{Name: "letters_only", Input: "abc", ExpectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			out, err := api.FilterNumber(tc.Input)
			if tc.ExpectError {
				assert.ErrorIs(t, err, api.ErrWrongNumberFormat)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.Expected, out)
		})
	}
}

func TestMethodPath(t *testing.T) {
	assert.Equal(t, "/v1/info/balance/", api.MethodPath("info/balance"))
	assert.Equal(t, "/v1/sip/", api.MethodPath("/sip/"))
}

func TestEndpoints_Parameters(t *testing.T) {
	start := time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		Name     string
		Call     func(*api.API) error
		Method   string
		Verb     string
		Expected string
	}{
		{
			Name:   "balance",
			Call:   func(a *api.API) error { _, err := a.GetBalance(context.Background()); return err },
			Method: "/v1/info/balance/", Verb: http.MethodGet, Expected: "",
		},
		{
			Name:   "price_with_caller_id",
			Call:   func(a *api.API) error { _, err := a.GetPrice(context.Background(), "+7 999 000-00-00", "7495"); return err },
			Method: "/v1/info/price/", Verb: http.MethodGet, Expected: "number=79990000000&caller_id=7495",
		},
		{
			Name: "callback_predicted",
			Call: func(a *api.API) error {
				_, err := a.RequestCallback(context.Background(), "100", "+79990000000", "", true)
				return err
			},
			Method: "/v1/request/callback/", Verb: http.MethodGet, Expected: "from=100&to=79990000000&predicted=true",
		},
		{
			Name:   "sip_status",
			Call:   func(a *api.API) error { _, err := a.GetSIPStatus(context.Background(), "100"); return err },
			Method: "/v1/sip/100/status/", Verb: http.MethodGet, Expected: "",
		},
		{
			Name:   "sip_redirection_all",
			Call:   func(a *api.API) error { _, err := a.GetSIPRedirection(context.Background(), ""); return err },
			Method: "/v1/sip/redirection/", Verb: http.MethodGet, Expected: "",
		},
		{
			Name:   "sip_caller_id",
			Call:   func(a *api.API) error { _, err := a.SetSIPCallerID(context.Background(), "100", "+7 495 000 00 00"); return err },
			Method: "/v1/sip/callerid/", Verb: http.MethodPut, Expected: "id=100&number=74950000000",
		},
		{
			Name:   "sip_redirection_status",
			Call:   func(a *api.API) error { _, err := a.SetSIPRedirectionStatus(context.Background(), "100", false); return err },
			Method: "/v1/sip/redirection/", Verb: http.MethodPut, Expected: "id=100&status=off",
		},
		{
			Name:   "sip_redirection_number",
			Call:   func(a *api.API) error { _, err := a.SetSIPRedirectionNumber(context.Background(), "100", "79990000000"); return err },
			Method: "/v1/sip/redirection/", Verb: http.MethodPut, Expected: "id=100&type=phone&number=79990000000",
		},
		{
			Name:   "pbx_info",
			Call:   func(a *api.API) error { _, err := a.GetPBXInfo(context.Background(), "100"); return err },
			Method: "/v1/pbx/internal/100/info/", Verb: http.MethodGet, Expected: "",
		},
		{
			Name:   "pbx_record",
			Call:   func(a *api.API) error { _, err := a.GetPBXRecord(context.Background(), "", "in_1", 1800); return err },
			Method: "/v1/pbx/record/request/", Verb: http.MethodGet, Expected: "pbx_call_id=in_1&lifetime=1800",
		},
		{
			Name: "pbx_recording_off_drops_speech",
			Call: func(a *api.API) error {
				_, err := a.SetPBXRecording(context.Background(), "100", api.RecordingOff, "", api.SpeechRecognitionAll)
				return err
			},
			Method: "/v1/pbx/internal/recording/", Verb: http.MethodPut, Expected: "id=100&status=off",
		},
		{
			Name: "pbx_recording_on",
			Call: func(a *api.API) error {
				_, err := a.SetPBXRecording(context.Background(), "100", api.RecordingOn, "a@b.c", api.SpeechRecognitionAll)
				return err
			},
			Method: "/v1/pbx/internal/recording/", Verb: http.MethodPut, Expected: "id=100&status=on&email=a%40b.c&speech_recognition=all",
		},
		{
			Name: "pbx_phone_redirection",
			Call: func(a *api.API) error {
				_, err := a.SetPBXPhoneRedirection(context.Background(), "100", "79990000000", false, true)
				return err
			},
			Method: "/v1/pbx/redirection/", Verb: http.MethodPost,
			Expected: "pbx_number=100&type=phone&condition=noanswer&destination=79990000000&set_caller_id=on",
		},
		{
			Name: "pbx_voicemail_redirection",
			Call: func(a *api.API) error {
				_, err := a.SetPBXVoicemailRedirection(context.Background(), "100", "a@b.c", true, api.GreetingStandard)
				return err
			},
			Method: "/v1/pbx/redirection/", Verb: http.MethodPost,
			Expected: "pbx_number=100&type=voicemail&condition=always&destination=a%40b.c&voicemail_greeting=standart",
		},
		{
			Name:   "pbx_redirection_off",
			Call:   func(a *api.API) error { _, err := a.SetPBXRedirectionOff(context.Background(), "100"); return err },
			Method: "/v1/pbx/redirection/", Verb: http.MethodPost, Expected: "pbx_number=100&status=off",
		},
		{
			Name: "statistics",
			Call: func(a *api.API) error {
				_, err := a.GetStatistics(context.Background(), api.StatisticsFilter{Start: start, SIP: "100", CostOnly: true, Limit: 10})
				return err
			},
			Method: "/v1/statistics/", Verb: http.MethodGet,
			Expected: "start=2023-01-01+10%3A00%3A00&sip=100&cost_only=true&limit=10",
		},
		{
			Name: "pbx_statistics_default_version",
			Call: func(a *api.API) error {
				_, err := a.GetPBXStatistics(context.Background(), api.PBXStatisticsFilter{CallType: api.CallTypeIncoming})
				return err
			},
			Method: "/v1/statistics/pbx/", Verb: http.MethodGet, Expected: "version=2&call_type=in",
		},
		{
			Name: "callback_widget_statistics",
			Call: func(a *api.API) error {
				_, err := a.GetCallbackWidgetStatistics(context.Background(), time.Time{}, time.Time{}, "w1")
				return err
			},
			Method: "/v1/statistics/callback_widget/", Verb: http.MethodGet, Expected: "widget_id=w1",
		},
		{
			Name: "incoming_call_statistics",
			Call: func(a *api.API) error {
				_, err := a.GetIncomingCallStatistics(context.Background(), api.IncomingCallStatisticsFilter{Skip: 5})
				return err
			},
			Method: "/v1/statistics/incoming-calls/", Verb: http.MethodGet, Expected: "skip=5",
		},
		{
			Name: "sms",
			Call: func(a *api.API) error {
				_, err := a.SendSMS(context.Background(), []string{"+7 999 000 00 00", "79990000001"}, "hello world", "")
				return err
			},
			Method: "/v1/sms/send/", Verb: http.MethodPost, Expected: "number=79990000000%2C79990000001&message=hello+world",
		},
		{
			Name:   "number_lookup",
			Call:   func(a *api.API) error { _, err := a.NumberLookup(context.Background(), "+79990000000"); return err },
			Method: "/v1/info/number_lookup/", Verb: http.MethodPost, Expected: "numbers=79990000000",
		},
		{
			Name: "number_lookup_multiple_skips_invalid",
			Call: func(a *api.API) error {
				return a.NumberLookupMultiple(context.Background(), []string{"79990000000", "n/a", "79990000001"})
			},
			Method: "/v1/info/number_lookup/", Verb: http.MethodPost, Expected: "numbers=79990000000&numbers=79990000001",
		},
		{
			Name:   "speech_start",
			Call:   func(a *api.API) error { _, err := a.StartSpeechRecognition(context.Background(), "c1", "en-US"); return err },
			Method: "/v1/speech_recognition/", Verb: http.MethodPut, Expected: "call_id=c1&lang=en-US",
		},
		{
			Name: "speech_result",
			Call: func(a *api.API) error {
				_, err := a.GetSpeechRecognitionResult(context.Background(), "c1", "", true, false)
				return err
			},
			Method: "/v1/speech_recognition/", Verb: http.MethodGet, Expected: "call_id=c1&return=words&alternatives=0",
		},
		{
			Name:   "webrtc_key",
			Call:   func(a *api.API) error { _, err := a.GetWebRTCKey(context.Background(), "12345-100"); return err },
			Method: "/v1/webrtc/get_key/", Verb: http.MethodGet, Expected: "sip=12345-100",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			caller := &fakeCaller{body: `{"status":"success"}`}
			require.NoError(t, tc.Call(api.New(caller)))

			call := caller.last(t)
			assert.Equal(t, tc.Method, call.Method)
			assert.Equal(t, tc.Verb, call.Verb)
			assert.Equal(t, transport.FormatJSON, call.Format)
			assert.Equal(t, tc.Expected, query.Encode(call.Params))
		})
	}
}

func TestEndpoints_Validation(t *testing.T) {
	testCases := []struct {
		Name     string
		Call     func(*api.API) error
		Expected error
	}{
		{
			Name:     "price_without_digits",
			Call:     func(a *api.API) error { _, err := a.GetPrice(context.Background(), "abc", ""); return err },
			Expected: api.ErrWrongNumberFormat,
		},
		{
			Name:     "record_without_ids",
			Call:     func(a *api.API) error { _, err := a.GetPBXRecord(context.Background(), "", "", 0); return err },
			Expected: api.ErrMissingCallID,
		},
		{
			Name: "sms_without_recipients",
			Call: func(a *api.API) error {
				_, err := a.SendSMS(context.Background(), nil, "hi", "")
				return err
			},
			Expected: api.ErrWrongNumberFormat,
		},
		{
			Name:     "lookup_multiple_all_invalid",
			Call:     func(a *api.API) error { return a.NumberLookupMultiple(context.Background(), []string{"x"}) },
			Expected: api.ErrWrongNumberFormat,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			caller := &fakeCaller{}
			err := tc.Call(api.New(caller))
			assert.ErrorIs(t, err, tc.Expected)
			assert.Empty(t, caller.calls, "no call may be issued")
		})
	}

	t.Run("unsupported_recording_status", func(t *testing.T) {
		caller := &fakeCaller{}
		_, err := api.New(caller).SetPBXRecording(context.Background(), "100", "maybe", "", "")
		assert.Error(t, err)
		assert.Empty(t, caller.calls)
	})
}

func TestEndpoints_Decoding(t *testing.T) {
	t.Run("price_info_envelope", func(t *testing.T) {
		caller := &fakeCaller{body: `{"status":"success","info":{"prefix":"7999","description":"Russia, Mobile","price":0.25,"currency":"USD"}}`}
		price, err := api.New(caller).GetPrice(context.Background(), "79990000000", "")
		require.NoError(t, err)
		assert.Equal(t, &api.Price{Prefix: "7999", Description: "Russia, Mobile", Price: 0.25, Currency: "USD"}, price)
	})

	t.Run("sips", func(t *testing.T) {
		caller := &fakeCaller{body: `{"status":"success","sips":[{"id":"00001","display_name":"Office","lines":3}]}`}
		sips, err := api.New(caller).GetSIPs(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []api.SIP{{ID: "00001", DisplayName: "Office", Lines: 3}}, sips)
	})

	t.Run("pbx_info_false_fields", func(t *testing.T) {
		caller := &fakeCaller{body: `{"status":"success","pbx_id":1,"number":100,"ip_restriction":false,"record_email":"a@b.c","record_store":"false"}`}
		info, err := api.New(caller).GetPBXInfo(context.Background(), "100")
		require.NoError(t, err)
		assert.Empty(t, info.IPRestriction)
		assert.Equal(t, api.OptionalString("a@b.c"), info.RecordEmail)
		assert.Equal(t, api.OptionalString("false"), info.RecordStore)
	})

	t.Run("direct_numbers", func(t *testing.T) {
		caller := &fakeCaller{body: `{"status":"success","info":[{"number":"74950000000","sip":100,"sip_name":null,"channels":2}]}`}
		numbers, err := api.New(caller).GetDirectNumbers(context.Background())
		require.NoError(t, err)
		require.Len(t, numbers, 1)
		assert.Equal(t, api.OptionalString("100"), numbers[0].SIP)
		assert.Empty(t, numbers[0].SIPName)
		assert.Equal(t, 2, numbers[0].Channels)
	})

	t.Run("speech_start_status", func(t *testing.T) {
		caller := &fakeCaller{body: `{"status":"success"}`}
		ok, err := api.New(caller).StartSpeechRecognition(context.Background(), "c1", "")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("caller_error_is_wrapped", func(t *testing.T) {
		rejected := &transport.APIError{StatusCode: http.StatusOK, Message: "Wrong parameters!"}
		caller := &fakeCaller{err: rejected}
		_, err := api.New(caller).GetBalance(context.Background())

		var ae *transport.APIError
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, "Wrong parameters!", ae.Message)
		assert.True(t, transport.IsRejected(err))
	})
}

func TestAPI_OverTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/info/balance/", r.URL.Path)
		assert.Equal(t, "KEY123:NjczYmM1Y2VhYjE0NmY5ZWQ0YzM1ZmI5YTk1M2RmMzNhNWE2MjZkNA==", r.Header.Get("Authorization"))
		w.Header().Set("X-RateLimit-Remaining", "99")
		_, _ = io.WriteString(w, `{"status":"success","balance":10.5,"currency":"USD"}`)
	}))
	defer srv.Close()

	client, err := transport.NewClient(signer.Credentials{Key: "KEY123", Secret: "secret1"}, transport.WithBaseURL(srv.URL))
	require.NoError(t, err)

	balance, err := api.New(client).GetBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &api.Balance{Balance: 10.5, Currency: "USD"}, balance)
	assert.Equal(t, transport.RateLimits{"remaining": 99}, client.Limits())
}
