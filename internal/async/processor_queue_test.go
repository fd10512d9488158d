package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodjo-amani/dossier-check/internal/common"
)

func TestProcessorQueueProcessesJobs(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var mu sync.Mutex
	var seen []string
	var traceIDs []string
	q := NewProcessorQueue(func(ctx context.Context, path string) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, path)
		traceIDs = append(traceIDs, common.RequestIDFromContext(ctx))
		return nil
	}, logger, WithWorkers(2), WithQueueSize(8))

	for _, p := range []string{"a.json", "b.json", "c.json"} {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: p, SubmittedAt: time.Now(), TraceID: "trace-" + p}))
	}
	q.Shutdown(context.Background())

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a.json", "b.json", "c.json"}, seen)
	assert.ElementsMatch(t, []string{"trace-a.json", "trace-b.json", "trace-c.json"}, traceIDs)
}

func TestProcessorQueueSurvivesHandlerError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var mu sync.Mutex
	processed := 0
	q := NewProcessorQueue(func(_ context.Context, path string) error {
		mu.Lock()
		defer mu.Unlock()
		processed++
		if path == "bad.json" {
			return errors.New("boom")
		}
		return nil
	}, logger, WithWorkers(1))

	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "bad.json"}))
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "good.json"}))
	q.Shutdown(context.Background())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, processed)
}

func TestProcessorQueueEnqueueAfterShutdown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	q := NewProcessorQueue(func(context.Context, string) error { return nil }, logger, WithWorkers(1))
	q.Shutdown(context.Background())

	// dropped, not panicking on the closed channel
	assert.NoError(t, q.Enqueue(context.Background(), Job{Path: "late.json"}))
}
