package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"waextract/pkg/models"
)

type pullCall struct {
	remote string
	local  string
}

type fakeBridge struct {
	calls  []pullCall
	failOn string
	err    error
}

func (f *fakeBridge) Pull(ctx context.Context, remote, local string) error {
	f.calls = append(f.calls, pullCall{remote, local})
	if remote == f.failOn {
		return f.err
	}
	return nil
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Info(format string, args ...any) {
	l.lines = append(l.lines, "INFO: "+fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Warning(format string, args ...any) {
	l.lines = append(l.lines, "WARNING: "+fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Error(format string, args ...any) {
	l.lines = append(l.lines, "ERROR: "+fmt.Sprintf(format, args...))
}

type fakeMonitor struct {
	watched string
	started bool
	closed  bool
}

func (m *fakeMonitor) AddWatch(path string) error { m.watched = path; return nil }
func (m *fakeMonitor) Start()                     { m.started = true }
func (m *fakeMonitor) Close() (int, error)        { m.closed = true; return 0, nil }

func testRun() *models.RunContext {
	now := time.Date(2024, 1, 15, 14, 30, 22, 0, time.Local)
	return models.NewRunContext("", "", ".", now)
}

func TestRun_PullsBothTreesInOrder(t *testing.T) {
	dest := t.TempDir()
	bridge := &fakeBridge{}
	log := &recordingLogger{}

	backupDir, err := NewEngine(bridge, testRun(), log).Run(context.Background(), dest)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if backupDir != filepath.Join(dest, "WhatsApp_Backup_20240115_143022") {
		t.Errorf("unexpected backup dir %s", backupDir)
	}

	want := []pullCall{
		{models.DefaultDatabaseSource, filepath.Join(backupDir, "Databases")},
		{models.DefaultMediaSource, filepath.Join(backupDir, "Media")},
	}
	if len(bridge.calls) != len(want) {
		t.Fatalf("got %d pulls, want %d", len(bridge.calls), len(want))
	}
	for i := range want {
		if bridge.calls[i] != want[i] {
			t.Errorf("pull %d = %+v, want %+v", i, bridge.calls[i], want[i])
		}
	}

	for _, sub := range []string{"Databases", "Media"} {
		if info, err := os.Stat(filepath.Join(backupDir, sub)); err != nil || !info.IsDir() {
			t.Errorf("%s not created: %v", sub, err)
		}
	}

	if len(log.lines) != 1 || log.lines[0] != "INFO: Backup completed in: "+backupDir {
		t.Errorf("unexpected log lines: %v", log.lines)
	}
}

func TestRun_DatabasePullFailureSkipsMedia(t *testing.T) {
	dest := t.TempDir()
	bridge := &fakeBridge{failOn: models.DefaultDatabaseSource, err: errors.New("exit status 1")}
	log := &recordingLogger{}

	backupDir, err := NewEngine(bridge, testRun(), log).Run(context.Background(), dest)
	if !errors.Is(err, ErrPullFailed) {
		t.Fatalf("expected ErrPullFailed, got %v", err)
	}

	if len(bridge.calls) != 1 {
		t.Fatalf("media pull attempted after database failure: %+v", bridge.calls)
	}
	if len(log.lines) != 1 || !strings.HasPrefix(log.lines[0], "ERROR: Error during backup: ") {
		t.Errorf("unexpected log lines: %v", log.lines)
	}

	// Partial backup is left in place
	if _, err := os.Stat(backupDir); err != nil {
		t.Errorf("backup dir removed on failure: %v", err)
	}
}

func TestRun_MediaPullFailure(t *testing.T) {
	bridge := &fakeBridge{failOn: models.DefaultMediaSource, err: errors.New("exit status 1")}
	log := &recordingLogger{}

	_, err := NewEngine(bridge, testRun(), log).Run(context.Background(), t.TempDir())
	if !errors.Is(err, ErrPullFailed) {
		t.Fatalf("expected ErrPullFailed, got %v", err)
	}
	if len(bridge.calls) != 2 {
		t.Errorf("expected both pulls, got %+v", bridge.calls)
	}
}

func TestRun_IdempotentDirectories(t *testing.T) {
	dest := t.TempDir()
	engine := NewEngine(&fakeBridge{}, testRun(), &recordingLogger{})

	for i := 0; i < 2; i++ {
		if _, err := engine.Run(context.Background(), dest); err != nil {
			t.Fatalf("run %d failed: %v", i+1, err)
		}
	}
}

func TestRun_DirectoryCreationFailure(t *testing.T) {
	dest := t.TempDir()
	blocker := filepath.Join(dest, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	bridge := &fakeBridge{}
	log := &recordingLogger{}

	_, err := NewEngine(bridge, testRun(), log).Run(context.Background(), blocker)
	if err == nil {
		t.Fatal("expected error when destination is a file")
	}
	if errors.Is(err, ErrPullFailed) {
		t.Error("filesystem failure reported as pull failure")
	}
	if len(bridge.calls) != 0 {
		t.Errorf("pulls attempted after mkdir failure: %+v", bridge.calls)
	}
	if len(log.lines) != 1 || !strings.HasPrefix(log.lines[0], "ERROR: Unexpected error: ") {
		t.Errorf("unexpected log lines: %v", log.lines)
	}
}

func TestRun_CancelledPullIsNotLogged(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bridge := &fakeBridge{failOn: models.DefaultDatabaseSource, err: errors.New("signal: killed")}
	log := &recordingLogger{}

	_, err := NewEngine(bridge, testRun(), log).Run(ctx, t.TempDir())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(log.lines) != 0 {
		t.Errorf("cancellation should not be logged: %v", log.lines)
	}
}

func TestRun_AttachesProgressMonitor(t *testing.T) {
	mon := &fakeMonitor{}
	engine := NewEngine(&fakeBridge{}, testRun(), &recordingLogger{}).WithProgress(mon)

	backupDir, err := engine.Run(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if mon.watched != backupDir || !mon.started || !mon.closed {
		t.Errorf("monitor not driven correctly: %+v", mon)
	}
}
