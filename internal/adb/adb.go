package adb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNotFound is returned when the adb executable cannot be launched.
var ErrNotFound = errors.New("adb executable not found")

// CommandError describes an adb invocation that exited non-zero.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("adb %s: %v", strings.Join(e.Args, " "), e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Executor runs bin with args and returns its captured stdout and stderr.
type Executor func(ctx context.Context, bin string, args ...string) (stdout, stderr []byte, err error)

// Manager wraps the adb command line tool.
type Manager struct {
	Path   string
	Serial string
	exec   Executor
}

func NewManager(path, serial string) *Manager {
	if path == "" {
		path = AutoDetect()
	}
	return &Manager{Path: path, Serial: serial, exec: runCommand}
}

// NewManagerWithExecutor is used by callers that supply their own process runner.
func NewManagerWithExecutor(path, serial string, run Executor) *Manager {
	m := NewManager(path, serial)
	m.exec = run
	return m
}

// Exec runs adb with the given args, prefixing "-s <serial>" when a serial
// is configured.
func (m *Manager) Exec(ctx context.Context, args ...string) (string, error) {
	if strings.TrimSpace(m.Serial) != "" {
		args = append([]string{"-s", m.Serial}, args...)
	}
	stdout, stderr, err := m.exec(ctx, m.Path, args...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return string(stdout), fmt.Errorf("%w: %s", ErrNotFound, m.Path)
		}
		return string(stdout), &CommandError{Args: args, Output: string(stderr), Err: err}
	}
	return string(stdout), nil
}

// CheckAvailable runs "adb version".
func (m *Manager) CheckAvailable(ctx context.Context) error {
	_, err := m.Exec(ctx, "version")
	return err
}

// HasDevice reports whether "adb devices" lists at least one entry after
// its header line. A failed invocation counts as no device.
func (m *Manager) HasDevice(ctx context.Context) bool {
	out, err := m.Exec(ctx, "devices")
	if err != nil {
		return false
	}
	return HasDeviceLines(out)
}

// HasDeviceLines drops the header line of a device listing and reports
// whether any remaining line is non-blank.
func HasDeviceLines(output string) bool {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for _, ln := range lines[1:] {
		if strings.TrimSpace(ln) != "" {
			return true
		}
	}
	return false
}

type Device struct {
	Serial string
	State  string
}

// Devices lists attached devices as reported by "adb devices".
func (m *Manager) Devices(ctx context.Context) ([]Device, error) {
	out, err := m.Exec(ctx, "devices")
	if err != nil {
		return nil, err
	}
	return parseDevices(out), nil
}

func parseDevices(output string) []Device {
	var res []Device
	for _, ln := range strings.Split(output, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		// Skip header and daemon startup noise
		if strings.HasPrefix(ln, "List of devices") || strings.HasPrefix(ln, "*") {
			continue
		}
		f := strings.Fields(ln)
		if len(f) < 2 {
			continue
		}
		res = append(res, Device{Serial: f[0], State: f[1]})
	}
	return res
}

// Pull copies a device path into a host directory with "adb pull".
func (m *Manager) Pull(ctx context.Context, remote, local string) error {
	_, err := m.Exec(ctx, "pull", remote, local)
	return err
}

func runCommand(ctx context.Context, bin string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Env = os.Environ()
	if runtime.GOOS == "windows" {
		hideWindowsWindow(cmd)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// AutoDetect looks for adb on PATH, then under the Android SDK roots.
func AutoDetect() string {
	exe := adbExecutableName()
	if p, err := exec.LookPath(exe); err == nil {
		return p
	}
	sdkRoots := []string{
		os.Getenv("ANDROID_SDK_ROOT"),
		os.Getenv("ANDROID_HOME"),
	}
	for _, root := range sdkRoots {
		if root == "" {
			continue
		}
		cand := filepath.Join(root, "platform-tools", exe)
		if fileExists(cand) {
			return cand
		}
	}
	return exe
}

func adbExecutableName() string {
	if runtime.GOOS == "windows" {
		return "adb.exe"
	}
	return "adb"
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
