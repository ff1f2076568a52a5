package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"waextract/internal/adb"
	"waextract/internal/backup"
	"waextract/internal/logging"
	"waextract/internal/metadata"
	"waextract/internal/prompt"
	"waextract/pkg/models"
)

type Bridge interface {
	CheckAvailable(ctx context.Context) error
	HasDevice(ctx context.Context) bool
	Devices(ctx context.Context) ([]adb.Device, error)
	Pull(ctx context.Context, remote, local string) error
}

type Console interface {
	ShowGuide(ctx context.Context) error
	AskDestination(ctx context.Context, initial string) (string, error)
}

// Recorder stores the outcome of a run.
type Recorder interface {
	Record(ctx context.Context, rec models.RunRecord) error
}

type Option func(*Extractor)

// WithDestination pre-fills the destination prompt.
func WithDestination(dest string) Option {
	return func(x *Extractor) { x.destination = dest }
}

func WithMatcher(m metadata.Matcher) Option {
	return func(x *Extractor) { x.match = m }
}

// WithProgress attaches a progress monitor, built per run, to the pulls.
func WithProgress(newMonitor func() (backup.ProgressMonitor, error)) Option {
	return func(x *Extractor) { x.newMonitor = newMonitor }
}

func WithHistory(r Recorder) Option {
	return func(x *Extractor) { x.history = r }
}

/*
Extractor runs the whole workflow, strictly in order:

	check adb -> setup guide -> check device -> destination prompt
	-> backup -> metadata -> report

A missing adb or device aborts the run, a failed copy is reported as a
failure, a failed metadata summary is logged but the run still succeeds.
*/
type Extractor struct {
	run     *models.RunContext
	bridge  Bridge
	console Console
	log     *logging.Logger
	out     io.Writer

	destination string
	match       metadata.Matcher
	newMonitor  func() (backup.ProgressMonitor, error)
	history     Recorder
}

func New(run *models.RunContext, bridge Bridge, console Console, log *logging.Logger, out io.Writer, opts ...Option) *Extractor {
	x := &Extractor{
		run:     run,
		bridge:  bridge,
		console: console,
		log:     log,
		out:     out,
		match:   metadata.SubstringMatcher,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

type result struct {
	code        ExitCode
	destination string
	backupDir   string
	stats       models.MediaStats
	err         error
}

// Run executes the extraction and never panics; every outcome is reported
// on the console and mapped to an exit code.
func (x *Extractor) Run(ctx context.Context) (code ExitCode) {
	defer func() {
		if r := recover(); r != nil {
			x.reportUnexpected(fmt.Errorf("%v", r))
			code = Unexpected
		}
	}()

	res := x.extract(ctx)
	if res.code != DependencyMissing {
		x.record(ctx, res)
	}

	switch res.code {
	case Success:
		fmt.Fprintln(x.out)
		fmt.Fprintln(x.out, prompt.Success.Render("Extraction completed successfully!"))
		fmt.Fprintf(x.out, "Files saved to: %s\n", res.backupDir)
		fmt.Fprintf(x.out, "See the log file '%s' for operation details\n", x.log.Path())
	case CopyFailed:
		fmt.Fprintln(x.out)
		fmt.Fprintln(x.out, prompt.Failure.Render("Extraction failed. Check the log file for details."))
	case Cancelled:
		fmt.Fprintln(x.out)
		fmt.Fprintln(x.out, "Operation interrupted by user.")
	case Unexpected:
		x.reportUnexpected(res.err)
	}
	return res.code
}

func (x *Extractor) extract(ctx context.Context) result {
	x.log.Info("Starting WhatsApp extraction process")

	if err := x.bridge.CheckAvailable(ctx); err != nil {
		if ctx.Err() != nil {
			return result{code: Cancelled}
		}
		x.log.Error("ADB not found on the system. Install Android Platform Tools.")
		return result{code: DependencyMissing, err: err}
	}

	if err := x.console.ShowGuide(ctx); err != nil {
		return interrupted(err)
	}

	if !x.bridge.HasDevice(ctx) {
		if ctx.Err() != nil {
			return result{code: Cancelled}
		}
		x.log.Error("No Android device connected")
		return result{code: NoDevice}
	}
	if devices, err := x.bridge.Devices(ctx); err == nil && len(devices) > 0 {
		x.log.Info("Device: %s (%s)", devices[0].Serial, devices[0].State)
	}

	dest, err := x.console.AskDestination(ctx, x.destination)
	if err != nil {
		return interrupted(err)
	}

	fmt.Fprintln(x.out, "\nStarting WhatsApp backup...")
	engine := backup.NewEngine(x.bridge, x.run, x.log)
	if x.newMonitor != nil {
		if mon, err := x.newMonitor(); err != nil {
			x.log.Warning("Progress monitor unavailable: %v", err)
		} else {
			engine.WithProgress(mon)
		}
	}

	backupDir, err := engine.Run(ctx, dest)
	if err != nil {
		if ctx.Err() != nil {
			return result{code: Cancelled, destination: dest, backupDir: backupDir}
		}
		return result{code: CopyFailed, destination: dest, backupDir: backupDir, err: err}
	}

	res := result{code: Success, destination: dest, backupDir: backupDir}
	// A failed summary is logged by the manager and does not fail the run.
	if meta, err := metadata.NewManager(x.run.Timestamp(), x.match, x.log).Extract(backupDir); err == nil {
		res.stats = meta.MediaStats
	}
	return res
}

func interrupted(err error) result {
	if errors.Is(err, prompt.ErrCancelled) || errors.Is(err, context.Canceled) {
		return result{code: Cancelled}
	}
	return result{code: Unexpected, err: err}
}

func (x *Extractor) reportUnexpected(err error) {
	fmt.Fprintf(x.out, "\nUnexpected error: %v\n", err)
	fmt.Fprintln(x.out, "Check the log file for details.")
}

func (x *Extractor) record(ctx context.Context, res result) {
	if x.history == nil {
		return
	}
	rec := models.RunRecord{
		Timestamp:   x.run.Timestamp(),
		StartedAt:   x.run.StartedAt(),
		Destination: res.destination,
		BackupDir:   res.backupDir,
		Outcome:     res.code.String(),
		Stats:       res.stats,
	}
	if err := x.history.Record(context.WithoutCancel(ctx), rec); err != nil {
		x.log.Warning("Could not record run in history: %v", err)
	}
}
