package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	processor "github.com/joseph-ayodele/invoice-tracker/internal/pipeline"
)

type fakeProcessor struct {
	seen  map[string]bool
	fail  string
	calls []string
}

func (f *fakeProcessor) ProcessFile(_ context.Context, path string) (processor.Outcome, error) {
	f.calls = append(f.calls, filepath.Base(path))
	if filepath.Base(path) == f.fail {
		return processor.Outcome{Path: path}, errors.New("extract failed")
	}
	id := uuid.New()
	return processor.Outcome{Path: path, Hash: "h-" + filepath.Base(path), RequestID: "req-1", InvoiceID: &id, Skipped: f.seen[filepath.Base(path)]}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("Rechnung"), 0o644))
}

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.pdf"))
	touch(t, filepath.Join(root, "b.TXT"))
	touch(t, filepath.Join(root, "notes.docx"))
	touch(t, filepath.Join(root, ".hidden.pdf"))
	touch(t, filepath.Join(root, ".cache", "c.pdf"))
	touch(t, filepath.Join(root, "sub", "d.pdf"))
	touch(t, filepath.Join(root, "sub", "e.pdf"))

	proc := &fakeProcessor{seen: map[string]bool{"d.pdf": true}, fail: "e.pdf"}
	ing := NewFSIngestor(proc, discardLogger())

	results, stats, err := ing.IngestDirectory(context.Background(), root, true)
	require.NoError(t, err)

	sort.Strings(proc.calls)
	assert.Equal(t, []string{"a.pdf", "b.TXT", "d.pdf", "e.pdf"}, proc.calls)
	assert.Equal(t, DirStats{Scanned: 5, Matched: 4, Succeeded: 3, Deduplicated: 1, Failed: 1}, stats)
	require.Len(t, results, 4)

	var failed []Result
	for _, r := range results {
		if r.Err != "" {
			failed = append(failed, r)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, "e.pdf", filepath.Base(failed[0].SourcePath))
}

func TestIngestDirectory_IncludesHidden(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, ".hidden.pdf"))
	ing := NewFSIngestor(&fakeProcessor{}, discardLogger())

	_, stats, err := ing.IngestDirectory(context.Background(), root, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), stats.Succeeded)
}

func TestIngestDirectory_Errors(t *testing.T) {
	ing := NewFSIngestor(&fakeProcessor{}, discardLogger())

	_, _, err := ing.IngestDirectory(context.Background(), "  ", true)
	assert.Equal(t, common.CodeInvalidArgument, common.CodeOf(err))

	_, _, err = ing.IngestDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"), true)
	assert.Equal(t, common.CodeNotFound, common.CodeOf(err))
}

func TestIngestPath_RejectsExtension(t *testing.T) {
	ing := NewFSIngestor(&fakeProcessor{}, discardLogger())
	_, err := ing.IngestPath(context.Background(), "scan.png")
	assert.Equal(t, common.CodeInvalidArgument, common.CodeOf(err))
}

func TestStartWatcher_EmitsNewFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "existing.pdf"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		Debounce:    20 * time.Millisecond,
		SkipHidden:  true,
	}, discardLogger())
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, "existing.pdf", filepath.Base(p))
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan did not emit")
	}

	touch(t, filepath.Join(root, "ignored.docx"))
	touch(t, filepath.Join(root, "new.pdf"))

	select {
	case p := <-events:
		assert.Equal(t, "new.pdf", filepath.Base(p))
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not emit new file")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStartWatcher_NoRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, discardLogger())
	require.Error(t, err)
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.pdf"))
	touch(t, filepath.Join(root, "b.csv"))
	touch(t, filepath.Join(root, ".git", "c.txt"))

	paths, col, err := Scan(context.Background(), root, true)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "a.pdf", filepath.Base(paths[0]))

	col.Record(paths[0], processor.Outcome{Hash: "h"}, nil)
	col.Record("other.pdf", processor.Outcome{}, errors.New("bad"))
	results, stats := col.Results()
	assert.Len(t, results, 2)
	assert.Equal(t, DirStats{Scanned: 2, Matched: 1, Succeeded: 1, Failed: 1}, stats)
}
