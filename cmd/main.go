package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"waextract/internal/adb"
	"waextract/internal/backup"
	"waextract/internal/catalog"
	"waextract/internal/config"
	"waextract/internal/extractor"
	"waextract/internal/inspect"
	"waextract/internal/logging"
	"waextract/internal/metadata"
	"waextract/internal/prompt"
	"waextract/internal/watcher"
	"waextract/pkg/models"
)

var (
	configPath  string
	adbPath     string
	serial      string
	destPath    string
	backupPath  string
	logDir      string
	progress    bool
	noHistory   bool
	listMode    bool
	verifyMode  bool
	historyMode bool
	limit       int
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "waextract",
		Short: "Copy WhatsApp data off an Android device via ADB",
		Long: `waextract pulls the WhatsApp Databases and Media folders from an Android
device into a timestamped backup directory and writes a media summary
(backup_metadata.json) next to them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runApp,
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML config file (default: user config dir)")
	rootCmd.Flags().StringVar(&adbPath, "adb", "", "Path to the adb executable")
	rootCmd.Flags().StringVar(&serial, "serial", "", "Serial of the device to use")
	rootCmd.Flags().StringVar(&destPath, "dest", "", "Existing destination folder for the backup")
	rootCmd.Flags().StringVar(&backupPath, "backup", "", "Backup directory to verify (verify mode only)")
	rootCmd.Flags().StringVar(&logDir, "log-dir", "", "Directory for the run log file")
	rootCmd.Flags().BoolVar(&progress, "progress", false, "Print progress while files are pulled")
	rootCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in the history catalog")
	rootCmd.Flags().BoolVar(&listMode, "list", false, "List backups in --dest")
	rootCmd.Flags().BoolVar(&verifyMode, "verify", false, "Verify a backup against its metadata")
	rootCmd.Flags().BoolVar(&historyMode, "history", false, "Show past runs")
	rootCmd.Flags().IntVar(&limit, "limit", 20, "Number of runs shown in history mode")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(extractor.Unexpected))
	}
}

func runApp(cmd *cobra.Command, args []string) error {
	modeCount := 0
	for _, on := range []bool{listMode, verifyMode, historyMode} {
		if on {
			modeCount++
		}
	}
	if modeCount > 1 {
		printUsageExamples()
		return fmt.Errorf("only one of --list, --verify, --history can be specified at a time")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg)

	match, err := metadata.MatcherFor(cfg.CategoryMatch)
	if err != nil {
		return err
	}

	switch {
	case listMode:
		if destPath == "" {
			printUsageExamples()
			return fmt.Errorf("--dest is required for list mode")
		}
		return inspect.NewEngine(match, os.Stdout).PrintBackups(destPath)
	case verifyMode:
		return verifyBackup(match)
	case historyMode:
		return showHistory(cfg)
	}

	os.Exit(int(runExtraction(cfg, match)))
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("adb") {
		cfg.ADBPath = adbPath
	}
	if cmd.Flags().Changed("serial") {
		cfg.Serial = serial
	}
	if cmd.Flags().Changed("log-dir") {
		cfg.LogDir = logDir
	}
	if progress {
		cfg.Progress = true
	}
	if noHistory {
		cfg.SetHistoryEnabled(false)
	}
}

func printUsageExamples() {
	fmt.Fprintf(os.Stderr, `
Usage Examples:
===============

1. Extract WhatsApp data (interactive):
   %s

2. Extract into a known folder with progress output:
   %s --dest /path/to/backups --progress

3. List backups in a folder:
   %s --list --dest /path/to/backups

4. Verify a backup against its metadata:
   %s --verify --backup /path/to/backups/WhatsApp_Backup_20240115_143022

5. Show past runs:
   %s --history --limit 10

`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func runExtraction(cfg *config.Config, match metadata.Matcher) extractor.ExitCode {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run := models.NewRunContext(cfg.DatabaseSource, cfg.MediaSource, cfg.LogDir, time.Now())
	logger := logging.NewLogger(run.LogFile(), os.Stdout)
	bridge := adb.NewManager(cfg.ADBPath, cfg.Serial)
	console := prompt.NewConsole(os.Stdin, os.Stdout)

	opts := []extractor.Option{
		extractor.WithDestination(destPath),
		extractor.WithMatcher(match),
	}
	if cfg.Progress {
		opts = append(opts, extractor.WithProgress(func() (backup.ProgressMonitor, error) {
			return watcher.NewWatcher(os.Stdout)
		}))
	}
	if cfg.HistoryEnabled() {
		history, err := catalog.Open(cfg.History.Path)
		if err != nil {
			log.Printf("Warning: history disabled: %v", err)
		} else {
			defer history.Close()
			opts = append(opts, extractor.WithHistory(history))
		}
	}

	return extractor.New(run, bridge, console, logger, os.Stdout, opts...).Run(ctx)
}

func verifyBackup(match metadata.Matcher) error {
	if backupPath == "" {
		printUsageExamples()
		return fmt.Errorf("--backup is required for verify mode")
	}
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup path does not exist: %s", backupPath)
	}

	if err := inspect.NewEngine(match, os.Stdout).ValidateBackup(backupPath); err != nil {
		return fmt.Errorf("backup validation failed: %w", err)
	}

	fmt.Println("Backup verification completed successfully!")
	return nil
}

func showHistory(cfg *config.Config) error {
	if cfg.History.Path == "" {
		return fmt.Errorf("no history catalog configured")
	}
	history, err := catalog.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer history.Close()

	records, err := history.Recent(context.Background(), limit)
	if err != nil {
		return err
	}

	fmt.Printf("Runs recorded in %s:\n", history.Path())
	fmt.Println("================")
	for _, r := range records {
		fmt.Printf("%s  %-18s  images %5d  videos %5d  audio %5d  documents %5d  %s\n",
			r.Timestamp, r.Outcome, r.Stats.Images, r.Stats.Videos, r.Stats.Audio, r.Stats.Documents, r.BackupDir)
	}
	fmt.Printf("\nSummary: %d runs\n", len(records))
	return nil
}
