package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/isometry/zadarma-go/internal/dedup"
	"github.com/isometry/zadarma-go/internal/webhook"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDelivery(t *testing.T) *Delivery {
	t.Helper()
	p := webhook.Payload{
		"event":       "NOTIFY_END",
		"call_start":  "2023-01-01 10:00:00",
		"pbx_call_id": "in_1700000000.1",
		"caller_id":   "79990000000",
		"called_did":  "74950000000",
	}
	result := webhook.Verify(p, "secret1", "9zLzD3gP5nhzAf7RuYa1Oxkwx/Q=")
	require.Equal(t, webhook.Verified, result.Outcome)
	d := NewDelivery(p, result)
	d.ReceivedAt = time.Date(2023, 1, 1, 10, 0, 5, 0, time.UTC)
	return d
}

type fakePutter struct {
	bucket, key, contentType string
	body                     []byte
	err                      error
}

func (f *fakePutter) PutObject(_ context.Context, bucket, key string, body []byte, contentType string) error {
	f.bucket, f.key, f.body, f.contentType = bucket, key, body, contentType
	return f.err
}

type fakePublisher struct {
	topic      string
	message    []byte
	attributes map[string]string
	err        error
}

func (f *fakePublisher) Publish(_ context.Context, topic string, message []byte, attributes map[string]string) (string, error) {
	f.topic, f.message, f.attributes = topic, message, attributes
	return "msg-1", f.err
}

type recorder struct {
	calls int
}

func (r *recorder) SetLogger(_ *slog.Logger) {}

func (r *recorder) Process(_ context.Context, _ *Delivery) error {
	r.calls++
	return nil
}

type counter struct {
	calls atomic.Int32
}

func (c *counter) SetLogger(_ *slog.Logger) {}

func (c *counter) Process(_ context.Context, _ *Delivery) error {
	c.calls.Add(1)
	return nil
}

type lockedPutter struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (f *lockedPutter) PutObject(_ context.Context, _, key string, _ []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = true
	return nil
}

type unavailableStore struct {
	forgotten int
}

func (s *unavailableStore) Seen(_ context.Context, _ string, _ time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}

func (s *unavailableStore) Forget(_ context.Context, _ string) error {
	s.forgotten++
	return nil
}

type countingStore struct {
	*dedup.MemoryStore
	forgotten int
}

func (s *countingStore) Forget(ctx context.Context, key string) error {
	s.forgotten++
	return s.MemoryStore.Forget(ctx, key)
}

func TestDelivery_Key(t *testing.T) {
	a, b := testDelivery(t), testDelivery(t)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Key(), b.Key())
	assert.Len(t, a.Key(), 64)

	b.Payload["duration"] = "42"
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestDelivery_MarshalJSON(t *testing.T) {
	d := testDelivery(t)
	body, err := json.Marshal(d)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, d.ID, doc["id"])
	assert.Equal(t, "NOTIFY_END", doc["event"])
	assert.Equal(t, "verified", doc["outcome"])
	assert.Equal(t, "in_1700000000.1", doc["pbxCallId"])
	assert.Equal(t, "79990000000", doc["payload"].(map[string]any)["caller_id"])
	assert.Equal(t, "74950000000", doc["decoded"].(map[string]any)["called_did"])
}

func TestDedupProcessor(t *testing.T) {
	store := dedup.NewMemoryStore()
	next := &recorder{}
	chain := []Processor{NewDedupProcessor(store, time.Hour), next}

	first := testDelivery(t)
	require.NoError(t, Process(context.Background(), nil, first, chain...))
	_, skipped := first.Skipped()
	assert.False(t, skipped)

	second := testDelivery(t)
	require.NoError(t, Process(context.Background(), nil, second, chain...))
	reason, skipped := second.Skipped()
	assert.True(t, skipped)
	assert.Equal(t, SkipDuplicate, reason)
	assert.Equal(t, 1, next.calls)
}

func TestProcess_RollbackOnFailure(t *testing.T) {
	store := dedup.NewMemoryStore()
	putter := &fakePutter{err: errors.New("AccessDenied")}
	chain := []Processor{
		NewDedupProcessor(store, time.Hour),
		NewS3ArchiveProcessor(putter, "archive", "zadarma"),
	}

	err := Process(context.Background(), nil, testDelivery(t), chain...)
	require.Error(t, err)
	assert.Equal(t, 0, store.Len(), "a failed delivery is not remembered")

	putter.err = nil
	require.NoError(t, Process(context.Background(), nil, testDelivery(t), chain...))
	assert.Equal(t, 1, store.Len())
}

func TestDedupProcessor_Rollback(t *testing.T) {
	testCases := []struct {
		Name            string
		Seed            bool
		Unavailable     bool
		ExpectForgotten int
		ExpectLen       int
	}{
		{
			Name:            "recorded_by_delivery",
			ExpectForgotten: 1,
		},
		{
			Name:        "store_unavailable",
			Unavailable: true,
		},
		{
			Name:      "recorded_by_other_delivery",
			Seed:      true,
			ExpectLen: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			ctx := context.Background()
			d := testDelivery(t)
			memory := &countingStore{MemoryStore: dedup.NewMemoryStore()}
			var store dedup.Store = memory
			unavailable := &unavailableStore{}
			if tc.Unavailable {
				store = unavailable
			}
			if tc.Seed {
				_, err := memory.Seen(ctx, d.Key(), time.Hour)
				require.NoError(t, err)
			}

			p := NewDedupProcessor(store, time.Hour)
			require.NoError(t, p.Process(ctx, d))
			require.NoError(t, p.(Rollbacker).Rollback(ctx, d))

			assert.Equal(t, tc.ExpectForgotten, memory.forgotten+unavailable.forgotten)
			assert.Equal(t, tc.ExpectLen, memory.Len())
		})
	}
}

func TestProcess_FailOpenKeepsOtherMark(t *testing.T) {
	ctx := context.Background()
	memory := dedup.NewMemoryStore()
	putter := &fakePutter{err: errors.New("AccessDenied")}

	// another receiver already recorded the key; this one cannot reach the store
	_, err := memory.Seen(ctx, testDelivery(t).Key(), time.Hour)
	require.NoError(t, err)
	unavailable := &unavailableStore{}
	chain := []Processor{
		NewDedupProcessor(unavailable, time.Hour),
		NewS3ArchiveProcessor(putter, "archive", "zadarma"),
	}

	require.Error(t, Process(ctx, nil, testDelivery(t), chain...))
	assert.Equal(t, 0, unavailable.forgotten)
	assert.Equal(t, 1, memory.Len())
}

func TestProcess_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	store := dedup.NewMemoryStore()
	putter := &lockedPutter{keys: make(map[string]bool)}
	next := &counter{}
	chain := []Processor{
		NewDedupProcessor(store, time.Hour, WithLogger(logger)),
		NewLogProcessor(WithLogger(logger)),
		NewS3ArchiveProcessor(putter, "archive", "zadarma", WithLogger(logger)),
		next,
	}

	const workers = 8
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d := testDelivery(t)
			d.Payload["call_start"] = time.Date(2023, 1, 1, 10, 0, i, 0, time.UTC).Format(time.DateTime)
			ids[i] = d.ID
			assert.NoError(t, Process(context.Background(), logger.With("worker", i), d, chain...))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(workers), next.calls.Load())
	assert.Equal(t, workers, store.Len())
	assert.Len(t, putter.keys, workers)
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		assert.NotContains(t, record, "worker", "processor records never carry another delivery's attributes")
		require.Contains(t, record, "delivery")
		assert.Contains(t, ids, record["delivery"].(map[string]any)["id"])
	}
}

func TestDelivery_LogValue(t *testing.T) {
	var buf bytes.Buffer
	d := testDelivery(t)
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("event", slog.Any("delivery", d))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, map[string]any{
		"id":        d.ID,
		"event":     "NOTIFY_END",
		"pbxCallID": "in_1700000000.1",
	}, record["delivery"])
}

func TestS3ArchiveProcessor(t *testing.T) {
	testCases := []struct {
		Name        string
		Bucket      string
		Prefix      string
		ExpectKey   string
		ExpectError bool
	}{
		{
			Name:      "with_prefix",
			Bucket:    "archive",
			Prefix:    "/zadarma/",
			ExpectKey: "zadarma/notify_end/2023/01/01/",
		},
		{
			Name:      "without_prefix",
			Bucket:    "archive",
			ExpectKey: "notify_end/2023/01/01/",
		},
		{
			Name:        "missing_bucket",
			ExpectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			putter := &fakePutter{}
			d := testDelivery(t)
			err := NewS3ArchiveProcessor(putter, tc.Bucket, tc.Prefix).Process(context.Background(), d)
			if tc.ExpectError {
				assert.ErrorIs(t, err, errMissingTarget)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.Bucket, putter.bucket)
			assert.Equal(t, tc.ExpectKey+d.ID+".json", putter.key)
			assert.Equal(t, "application/json", putter.contentType)
			assert.True(t, json.Valid(putter.body))
		})
	}
}

func TestSNSForwarderProcessor(t *testing.T) {
	publisher := &fakePublisher{}
	d := testDelivery(t)
	require.NoError(t, NewSNSForwarderProcessor(publisher, "arn:aws:sns:eu-west-1:123456789012:calls").Process(context.Background(), d))
	assert.Equal(t, "arn:aws:sns:eu-west-1:123456789012:calls", publisher.topic)
	assert.Equal(t, map[string]string{
		"event":       "NOTIFY_END",
		"outcome":     "verified",
		"pbx_call_id": "in_1700000000.1",
	}, publisher.attributes)
	assert.True(t, json.Valid(publisher.message))

	err := NewSNSForwarderProcessor(publisher, "").Process(context.Background(), d)
	assert.ErrorIs(t, err, errMissingTarget)

	publisher.err = errors.New("AuthorizationError")
	assert.Error(t, NewSNSForwarderProcessor(publisher, "topic").Process(context.Background(), d))
}

func TestLogProcessor(t *testing.T) {
	assert.NoError(t, NewLogProcessor().Process(context.Background(), testDelivery(t)))
}
