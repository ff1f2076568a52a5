package backup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"waextract/internal/utils"
	"waextract/pkg/models"
)

// ErrPullFailed wraps a failed adb pull.
var ErrPullFailed = errors.New("pull failed")

const (
	DatabasesDir = "Databases"
	MediaDir     = "Media"
)

type Puller interface {
	Pull(ctx context.Context, remote, local string) error
}

type Logger interface {
	Info(format string, args ...any)
	Warning(format string, args ...any)
	Error(format string, args ...any)
}

// ProgressMonitor observes the backup directory while the pulls run.
type ProgressMonitor interface {
	AddWatch(path string) error
	Start()
	Close() (int, error)
}

/*
Engine copies the WhatsApp trees off the device.
1. Initialize() - create WhatsApp_Backup_<timestamp>/{Databases,Media}
2. Run() - pull the database tree, then the media tree
The second pull only starts after the first one succeeded. Nothing is
cleaned up on failure so the operator can inspect what was copied.
*/
type Engine struct {
	bridge  Puller
	run     *models.RunContext
	log     Logger
	monitor ProgressMonitor
}

func NewEngine(bridge Puller, run *models.RunContext, log Logger) *Engine {
	return &Engine{
		bridge: bridge,
		run:    run,
		log:    log,
	}
}

// WithProgress attaches a monitor for the duration of the pulls.
func (e *Engine) WithProgress(m ProgressMonitor) *Engine {
	e.monitor = m
	return e
}

func (e *Engine) BackupDir(destination string) string {
	return filepath.Join(destination, e.run.BackupDirName())
}

func (e *Engine) Initialize(backupDir string) error {
	for _, dir := range []string{
		backupDir,
		filepath.Join(backupDir, DatabasesDir),
		filepath.Join(backupDir, MediaDir),
	} {
		if err := utils.EnsureDirectoryExists(dir); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Run performs the backup into destination, which must already exist, and
// returns the backup directory.
func (e *Engine) Run(ctx context.Context, destination string) (string, error) {
	backupDir := e.BackupDir(destination)

	if err := e.Initialize(backupDir); err != nil {
		e.log.Error("Unexpected error: %v", err)
		return backupDir, err
	}

	if e.monitor != nil {
		e.startMonitor(backupDir)
		defer e.stopMonitor()
	}

	pulls := []struct {
		remote string
		local  string
	}{
		{e.run.DatabaseSource(), filepath.Join(backupDir, DatabasesDir)},
		{e.run.MediaSource(), filepath.Join(backupDir, MediaDir)},
	}

	for _, p := range pulls {
		if err := e.bridge.Pull(ctx, p.remote, p.local); err != nil {
			if ctx.Err() != nil {
				return backupDir, ctx.Err()
			}
			e.log.Error("Error during backup: %v", err)
			return backupDir, fmt.Errorf("%w: %w", ErrPullFailed, err)
		}
	}

	e.log.Info("Backup completed in: %s", backupDir)
	return backupDir, nil
}

func (e *Engine) startMonitor(backupDir string) {
	if err := e.monitor.AddWatch(backupDir); err != nil {
		e.log.Warning("Progress monitor unavailable: %v", err)
		e.monitor = nil
		return
	}
	e.monitor.Start()
}

func (e *Engine) stopMonitor() {
	if e.monitor == nil {
		return
	}
	e.monitor.Close()
}
