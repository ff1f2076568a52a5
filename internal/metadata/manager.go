package metadata

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"waextract/internal/utils"
	"waextract/pkg/models"
)

const FileName = "backup_metadata.json"

type Logger interface {
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Manager builds the media summary of a finished backup.
type Manager struct {
	timestamp string
	match     Matcher
	log       Logger
}

func NewManager(timestamp string, match Matcher, log Logger) *Manager {
	if match == nil {
		match = SubstringMatcher
	}
	return &Manager{
		timestamp: timestamp,
		match:     match,
		log:       log,
	}
}

// Extract summarizes <backupDir>/Media and writes backup_metadata.json.
// Failures are logged and returned; nothing already on disk is removed.
func (m *Manager) Extract(backupDir string) (*models.BackupMetadata, error) {
	meta, err := m.Summarize(filepath.Join(backupDir, "Media"))
	if err == nil {
		err = SaveMetadata(backupDir, meta, m.match)
	}
	if err != nil {
		if m.log != nil {
			m.log.Error("Error while extracting metadata: %v", err)
		}
		return nil, err
	}

	if m.log != nil {
		m.log.Info("Metadata saved: %s", FileName)
	}
	return meta, nil
}

// Summarize walks mediaDir in lexical order and records every WhatsApp
// media folder with its direct file count.
func (m *Manager) Summarize(mediaDir string) (*models.BackupMetadata, error) {
	meta := newRecord(m.timestamp)

	err := filepath.WalkDir(mediaDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || !IsMediaFolder(d.Name()) {
			return nil
		}

		count, err := utils.CountFiles(path)
		if err != nil {
			return err
		}
		addFolder(meta, d.Name(), count, m.match)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", mediaDir, err)
	}

	return meta, nil
}

// SaveMetadata validates meta and writes it with 4-space indentation,
// replacing any previous file.
func SaveMetadata(backupDir string, meta *models.BackupMetadata, match Matcher) error {
	if match == nil {
		match = SubstringMatcher
	}
	if err := Validate(meta, match); err != nil {
		return err
	}

	data, err := json.MarshalIndent(meta, "", "    ")
	if err != nil {
		return err
	}

	metadataPath := filepath.Join(backupDir, FileName)
	tempPath := metadataPath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}

	return os.Rename(tempPath, metadataPath)
}

func LoadMetadata(backupDir string) (*models.BackupMetadata, error) {
	data, err := os.ReadFile(filepath.Join(backupDir, FileName))
	if err != nil {
		return nil, err
	}

	var meta models.BackupMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	if meta.ChatFolders == nil {
		meta.ChatFolders = make([]models.ChatFolder, 0)
	}
	return &meta, nil
}
