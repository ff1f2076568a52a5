package logging

import (
	"fmt"
	"io"
	"os"
	"time"
)

type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

const lineTimeLayout = "2006-01-02 15:04:05"

/*
Logger writes run events to the per-run log file and mirrors them on the
console.
  - the file is opened, appended and closed on every call, so an
    interrupted run still leaves a readable log
  - console lines are "LEVEL: message"
  - no locking, callers are sequential
*/
type Logger struct {
	path    string
	console io.Writer
	errOut  io.Writer
	now     func() time.Time
}

func NewLogger(path string, console io.Writer) *Logger {
	if console == nil {
		console = os.Stdout
	}
	return &Logger{
		path:    path,
		console: console,
		errOut:  os.Stderr,
		now:     time.Now,
	}
}

func (l *Logger) Path() string {
	return l.path
}

func (l *Logger) Log(level Level, message string) {
	line := fmt.Sprintf("[%s] %s: %s\n", l.now().Format(lineTimeLayout), level, message)
	if err := l.appendLine(line); err != nil {
		fmt.Fprintf(l.errOut, "cannot write log file %s: %v\n", l.path, err)
	}
	fmt.Fprintf(l.console, "%s: %s\n", level, message)
}

func (l *Logger) Info(format string, args ...any) {
	l.Log(LevelInfo, fmt.Sprintf(format, args...))
}

func (l *Logger) Warning(format string, args ...any) {
	l.Log(LevelWarning, fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...any) {
	l.Log(LevelError, fmt.Sprintf(format, args...))
}

func (l *Logger) appendLine(line string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
