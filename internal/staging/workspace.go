package staging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"mashup/internal/logging"
	"mashup/internal/services"
)

// runDirPrefix marks per-run directories created under the staging and
// output roots when runs are isolated.
const runDirPrefix = "run-"

const lockRetryDelay = 250 * time.Millisecond

// Layout describes where a run's scratch space lives.
type Layout struct {
	StagingRoot string
	OutputRoot  string
	// LockPath guards the shared roots when Isolate is false. It must live
	// outside both roots because Clear would otherwise delete it.
	LockPath    string
	Isolate     bool
	LockTimeout time.Duration
}

// Workspace is the cleared pair of directories owned by one run.
type Workspace struct {
	RunID      string
	StagingDir string
	OutputDir  string

	lock *flock.Flock
}

// Open prepares the scratch directories for runID and clears them. With
// isolation enabled each run gets private subdirectories; otherwise the
// shared roots are used under an exclusive file lock that is held until
// Release.
func Open(ctx context.Context, layout Layout, runID string, logger *slog.Logger) (*Workspace, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, errors.New("workspace: run id is empty")
	}

	ws := &Workspace{
		RunID:      runID,
		StagingDir: layout.StagingRoot,
		OutputDir:  layout.OutputRoot,
	}
	if layout.Isolate {
		ws.StagingDir = filepath.Join(layout.StagingRoot, runDirPrefix+runID)
		ws.OutputDir = filepath.Join(layout.OutputRoot, runDirPrefix+runID)
	} else {
		lock, err := acquire(ctx, layout.LockPath, layout.LockTimeout)
		if err != nil {
			return nil, err
		}
		ws.lock = lock
	}

	for _, dir := range []string{ws.StagingDir, ws.OutputDir} {
		if err := Clear(dir); err != nil {
			_ = ws.Release()
			return nil, services.Wrap(services.ErrConfiguration, "workspace", "clear", dir, err)
		}
	}

	logger.Debug("workspace ready",
		logging.String("staging_dir", ws.StagingDir),
		logging.String("output_dir", ws.OutputDir),
		logging.Bool("isolated", layout.Isolate),
		logging.String(logging.FieldEventType, "workspace_ready"),
	)
	return ws, nil
}

// Release drops the shared-directory lock, if one is held. Directories are
// left on disk.
func (w *Workspace) Release() error {
	if w == nil || w.lock == nil {
		return nil
	}
	lock := w.lock
	w.lock = nil
	return lock.Unlock()
}

func acquire(ctx context.Context, path string, timeout time.Duration) (*flock.Flock, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "workspace", "lock", "lock path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	lock := flock.New(path)
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, services.Fail(services.ErrConfiguration, "Another mashup run is using the shared directories. Try again later.", err)
		}
		return nil, fmt.Errorf("acquire workspace lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("acquire workspace lock: %s is held", path)
	}
	return lock, nil
}
