package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	processor "github.com/joseph-ayodele/invoice-tracker/internal/pipeline"
)

// Result is the per-file ingest outcome.
type Result struct {
	SourcePath   string `json:"source_path"`
	RequestID    string `json:"request_id,omitempty"`
	InvoiceID    string `json:"invoice_id,omitempty"`
	HashHex      string `json:"hash,omitempty"`
	Deduplicated bool   `json:"deduplicated,omitempty"`
	Status       string `json:"status,omitempty"`
	Err          string `json:"error,omitempty"`
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32 `json:"scanned"`
	Matched      uint32 `json:"matched"`
	Succeeded    uint32 `json:"succeeded"`
	Deduplicated uint32 `json:"deduplicated"`
	Failed       uint32 `json:"failed"`
}

// FileProcessor processes one file end to end.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (processor.Outcome, error)
}

// FSIngestor feeds files from the local filesystem into a FileProcessor.
type FSIngestor struct {
	proc   FileProcessor
	logger *slog.Logger
}

func NewFSIngestor(proc FileProcessor, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{proc: proc, logger: logger}
}

// IngestPath processes a single file.
func (i *FSIngestor) IngestPath(ctx context.Context, path string) (Result, error) {
	out := Result{SourcePath: path}

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}
	out.SourcePath = abs
	if !AllowedExt(filepath.Ext(abs)) {
		return out, common.InvalidArgumentf("unsupported or missing extension: %q", filepath.Ext(abs))
	}

	o, err := i.proc.ProcessFile(ctx, abs)
	if err != nil {
		return out, err
	}
	out.RequestID = o.RequestID
	out.HashHex = o.Hash
	out.Deduplicated = o.Skipped
	out.Status = o.Status
	if o.InvoiceID != nil {
		out.InvoiceID = o.InvoiceID.String()
	}
	return out, nil
}

// Scan walks root and returns the allowed files below it, skipping hidden
// entries if requested. Unreadable entries are counted as failed.
func Scan(ctx context.Context, root string, skipHidden bool) ([]string, *Collector, error) {
	if strings.TrimSpace(root) == "" {
		return nil, nil, common.InvalidArgument("root_path is required")
	}
	col := &Collector{}
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			col.scanned(false)
			col.Record(path, processor.Outcome{}, walkErr)
			return nil
		}
		if path != root && skipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		matched := AllowedExt(filepath.Ext(path))
		col.scanned(matched)
		if matched {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, common.NotFound(fmt.Sprintf("directory %q not found", root))
		}
		return nil, nil, fmt.Errorf("walk: %w", err)
	}
	return paths, col, nil
}

// Collector accumulates per-file results and stats. It is safe for
// concurrent use by queue workers.
type Collector struct {
	mu      sync.Mutex
	stats   DirStats
	results []Result
}

func (c *Collector) scanned(matched bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Scanned++
	if matched {
		c.stats.Matched++
	}
}

// Record adds the outcome of one file.
func (c *Collector) Record(path string, o processor.Outcome, err error) {
	r := Result{SourcePath: path, RequestID: o.RequestID, HashHex: o.Hash, Deduplicated: o.Skipped, Status: o.Status}
	if o.InvoiceID != nil {
		r.InvoiceID = o.InvoiceID.String()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		r.Err = err.Error()
		c.stats.Failed++
	} else {
		c.stats.Succeeded++
		if r.Deduplicated {
			c.stats.Deduplicated++
		}
	}
	c.results = append(c.results, r)
}

// Results returns the recorded results and stats.
func (c *Collector) Results() ([]Result, DirStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Result(nil), c.results...), c.stats
}

// IngestDirectory scans root and processes every allowed file in turn.
// Per-file failures are counted, not returned.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]Result, DirStats, error) {
	paths, col, err := Scan(ctx, root, skipHidden)
	if err != nil {
		return nil, DirStats{}, err
	}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, DirStats{}, err
		}
		r, err := i.IngestPath(ctx, path)
		if err != nil {
			i.logger.Warn("ingest.file.failed", "path", path, "error", err)
			col.Record(r.SourcePath, processor.Outcome{}, err)
			continue
		}
		col.add(r)
	}

	results, stats := col.Results()
	LogStats(i.logger, root, stats)
	return results, stats, nil
}

func (c *Collector) add(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Succeeded++
	if r.Deduplicated {
		c.stats.Deduplicated++
	}
	c.results = append(c.results, r)
}

// LogStats logs the summary of a directory ingest.
func LogStats(logger *slog.Logger, root string, stats DirStats) {
	logger.Info("ingest.dir.done",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
}
