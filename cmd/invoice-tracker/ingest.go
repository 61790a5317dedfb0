package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-tracker/internal/app"
	"github.com/joseph-ayodele/invoice-tracker/internal/async"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/ingest"
	processor "github.com/joseph-ayodele/invoice-tracker/internal/pipeline"
)

func newIngestCommand(e *env) *cobra.Command {
	var dir string
	var watch, includeHidden bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Extract every PDF/TXT invoice below a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, closeDB, err := e.open(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			stats, err := ingestDir(ctx, a, e.cfg.Worker, dir, !includeHidden)
			if err != nil {
				return err
			}
			if err := printJSON(cmd, stats); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchDir(ctx, a, e.cfg.Worker, dir, !includeHidden)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory to ingest (required)")
	_ = cmd.MarkFlagRequired("dir")
	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and ingest new files as they appear")
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "also ingest hidden files and directories")
	return cmd
}

func newQueue(a *app.App, cfg common.WorkerConfig, opts ...async.Option) *async.ProcessorQueue {
	opts = append([]async.Option{
		async.WithWorkers(cfg.Workers),
		async.WithQueueSize(cfg.QueueSize),
		async.WithProcessTimeout(cfg.ProcessTimeout),
	}, opts...)
	return async.NewProcessorQueue(a.Processor, a.Logger, opts...)
}

// ingestDir scans dir and pushes every file through the worker queue.
func ingestDir(ctx context.Context, a *app.App, cfg common.WorkerConfig, dir string, skipHidden bool) (ingest.DirStats, error) {
	paths, col, err := ingest.Scan(ctx, dir, skipHidden)
	if err != nil {
		return ingest.DirStats{}, err
	}
	q := newQueue(a, cfg, async.WithResultHandler(func(job async.Job, out processor.Outcome, err error) {
		col.Record(job.Path, out, err)
	}))
	for _, p := range paths {
		if err := q.Enqueue(ctx, async.Job{Path: p}); err != nil {
			q.Shutdown(context.Background())
			return ingest.DirStats{}, fmt.Errorf("enqueue %s: %w", p, err)
		}
	}
	q.Shutdown(context.Background())

	_, stats := col.Results()
	ingest.LogStats(a.Logger, dir, stats)
	return stats, nil
}

// watchDir enqueues files created below dir until ctx is done.
func watchDir(ctx context.Context, a *app.App, cfg common.WorkerConfig, dir string, skipHidden bool) error {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:      []string{dir},
		Debounce:   cfg.WatchDebounce,
		SkipHidden: skipHidden,
	}, a.Logger)
	if err != nil {
		return err
	}
	q := newQueue(a, cfg)
	defer q.Shutdown(context.Background())

	a.Logger.Info("watching for new invoices", "dir", dir)
	for {
		select {
		case p, ok := <-events:
			if !ok {
				return nil
			}
			if err := q.Enqueue(ctx, async.Job{Path: p}); err != nil && !errors.Is(err, context.Canceled) {
				a.Logger.Error("enqueue failed", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			a.Logger.Warn("watcher reported error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}
