package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
)

// Runner executes an external text tool. Tests substitute a stub.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec. A binary missing from PATH yields
// an UNAVAILABLE error so callers can fall through to the next source.
type ExecRunner struct {
	Logger *slog.Logger
}

const stderrLogCap = 8 << 10

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bin, err := exec.LookPath(name)
	if err != nil {
		logger.Debug("ocr.exec.missing", "cmd", name)
		return nil, nil, common.Unavailable(name+" not installed", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	attrs := []any{"cmd", name, "args", strings.Join(args, " "), "duration_ms", time.Since(start).Milliseconds()}
	if err != nil {
		logger.Error("ocr.exec.failed", append(attrs, "error", err, "stderr", clip(stderr.String(), stderrLogCap))...)
	} else {
		logger.Debug("ocr.exec.ok", append(attrs, "stdout_bytes", stdout.Len())...)
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
