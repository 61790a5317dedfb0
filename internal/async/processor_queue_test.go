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

	processor "github.com/joseph-ayodele/invoice-tracker/internal/pipeline"
)

type recordingProcessor struct {
	mu    sync.Mutex
	paths []string
	fail  map[string]bool
}

func (r *recordingProcessor) ProcessFile(_ context.Context, path string) (processor.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	if r.fail[path] {
		return processor.Outcome{Path: path}, errors.New("boom")
	}
	return processor.Outcome{Path: path, RequestID: "req-" + path}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessorQueue_ProcessesAllJobs(t *testing.T) {
	proc := &recordingProcessor{fail: map[string]bool{"b.pdf": true}}
	var mu sync.Mutex
	results := map[string]error{}

	q := NewProcessorQueue(proc, discardLogger(),
		WithWorkers(2),
		WithQueueSize(1),
		WithProcessTimeout(time.Second),
		WithResultHandler(func(job Job, _ processor.Outcome, err error) {
			mu.Lock()
			results[job.Path] = err
			mu.Unlock()
		}),
	)
	for _, p := range []string{"a.pdf", "b.pdf", "c.txt"} {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: p}))
	}
	q.Shutdown(context.Background())

	assert.ElementsMatch(t, []string{"a.pdf", "b.pdf", "c.txt"}, proc.paths)
	require.Len(t, results, 3)
	assert.NoError(t, results["a.pdf"])
	assert.Error(t, results["b.pdf"])
	assert.NoError(t, results["c.txt"])
}

func TestProcessorQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&recordingProcessor{}, discardLogger())
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{Path: "late.pdf"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

type blockingProcessor struct {
	release chan struct{}
}

func (b *blockingProcessor) ProcessFile(ctx context.Context, path string) (processor.Outcome, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return processor.Outcome{Path: path}, nil
}

func TestProcessorQueue_EnqueueHonoursContext(t *testing.T) {
	proc := &blockingProcessor{release: make(chan struct{})}
	q := NewProcessorQueue(proc, discardLogger(), WithWorkers(1), WithQueueSize(1))
	defer func() {
		close(proc.release)
		q.Shutdown(context.Background())
	}()

	// one job occupies the worker, one fills the buffer
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "1"}))
	require.Eventually(t, func() bool { return len(q.ch) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "2"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, Job{Path: "3"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
