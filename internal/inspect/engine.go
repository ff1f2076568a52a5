package inspect

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"waextract/internal/backup"
	"waextract/internal/metadata"
	"waextract/internal/utils"
	"waextract/pkg/models"
)

// ErrMismatch is returned when the media on disk no longer matches
// backup_metadata.json.
var ErrMismatch = errors.New("backup does not match its metadata")

const backupPrefix = "WhatsApp_Backup_"

// BackupSummary describes one backup directory found under a destination.
type BackupSummary struct {
	Dir      string
	Metadata *models.BackupMetadata
	Err      error
}

// Engine reads finished backups without touching them.
type Engine struct {
	match metadata.Matcher
	out   io.Writer
}

func NewEngine(match metadata.Matcher, out io.Writer) *Engine {
	if match == nil {
		match = metadata.SubstringMatcher
	}
	return &Engine{match: match, out: out}
}

// ListBackups returns the backups under destination, oldest first.
func (e *Engine) ListBackups(destination string) ([]BackupSummary, error) {
	entries, err := os.ReadDir(destination)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), backupPrefix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	summaries := make([]BackupSummary, 0, len(names))
	for _, name := range names {
		dir := filepath.Join(destination, name)
		meta, err := metadata.LoadMetadata(dir)
		summaries = append(summaries, BackupSummary{Dir: dir, Metadata: meta, Err: err})
	}
	return summaries, nil
}

func (e *Engine) PrintBackups(destination string) error {
	summaries, err := e.ListBackups(destination)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.out, "Backups in %s:\n", destination)
	fmt.Fprintln(e.out, "================")

	for _, s := range summaries {
		if s.Err != nil {
			fmt.Fprintf(e.out, "%-32s  no metadata (%v)\n", filepath.Base(s.Dir), s.Err)
			continue
		}
		st := s.Metadata.MediaStats
		fmt.Fprintf(e.out, "%-32s  images %6d  videos %6d  audio %6d  documents %6d\n",
			filepath.Base(s.Dir), st.Images, st.Videos, st.Audio, st.Documents)
	}

	fmt.Fprintf(e.out, "\nSummary: %d backups\n", len(summaries))
	return nil
}

// ValidateBackup checks the backup layout and recounts its media.
func (e *Engine) ValidateBackup(backupDir string) error {
	for _, sub := range []string{backup.DatabasesDir, backup.MediaDir} {
		if !utils.IsDirectory(filepath.Join(backupDir, sub)) {
			return fmt.Errorf("%s directory missing in %s", sub, backupDir)
		}
	}

	stored, err := metadata.LoadMetadata(backupDir)
	if err != nil {
		return fmt.Errorf("failed to load metadata: %w", err)
	}

	dbDir := filepath.Join(backupDir, backup.DatabasesDir)
	if entries, err := os.ReadDir(dbDir); err == nil && len(entries) == 0 {
		log.Printf("Warning: %s is empty", dbDir)
	}

	current, err := metadata.NewManager(stored.TimestampBackup, e.match, nil).
		Summarize(filepath.Join(backupDir, backup.MediaDir))
	if err != nil {
		return err
	}

	if current.MediaStats != stored.MediaStats {
		return fmt.Errorf("%w: media_stats on disk %+v, recorded %+v", ErrMismatch, current.MediaStats, stored.MediaStats)
	}
	if !reflect.DeepEqual(current.ChatFolders, stored.ChatFolders) {
		return fmt.Errorf("%w: %d media folders on disk, %d recorded", ErrMismatch, len(current.ChatFolders), len(stored.ChatFolders))
	}

	log.Printf("Backup validation completed: %d media folders verified", len(stored.ChatFolders))
	return nil
}
