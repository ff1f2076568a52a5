package models

import (
	"fmt"
	"path/filepath"
	"time"
)

// TimestampLayout is the run timestamp format, e.g. 20240115_143022.
const TimestampLayout = "20060102_150405"

// Default device-side trees copied by a run.
const (
	DefaultDatabaseSource = "/sdcard/WhatsApp/Databases"
	DefaultMediaSource    = "/sdcard/WhatsApp/Media"
)

// RunContext holds per-run values. It is built once at startup and only
// read afterwards.
type RunContext struct {
	databaseSource string
	mediaSource    string
	timestamp      string
	startedAt      time.Time
	logFile        string
}

func NewRunContext(databaseSource, mediaSource, logDir string, now time.Time) *RunContext {
	if databaseSource == "" {
		databaseSource = DefaultDatabaseSource
	}
	if mediaSource == "" {
		mediaSource = DefaultMediaSource
	}
	ts := now.Format(TimestampLayout)
	return &RunContext{
		databaseSource: databaseSource,
		mediaSource:    mediaSource,
		timestamp:      ts,
		startedAt:      now,
		logFile:        filepath.Join(logDir, fmt.Sprintf("whatsapp_extraction_%s.log", ts)),
	}
}

func (r *RunContext) DatabaseSource() string { return r.databaseSource }
func (r *RunContext) MediaSource() string    { return r.mediaSource }
func (r *RunContext) Timestamp() string      { return r.timestamp }
func (r *RunContext) StartedAt() time.Time   { return r.startedAt }
func (r *RunContext) LogFile() string        { return r.logFile }

// BackupDirName is the host directory name created under the destination.
func (r *RunContext) BackupDirName() string {
	return "WhatsApp_Backup_" + r.timestamp
}

type ChatFolder struct {
	Name      string `json:"name"`
	FileCount int    `json:"file_count"`
}

type MediaStats struct {
	Images    int `json:"images"`
	Videos    int `json:"videos"`
	Audio     int `json:"audio"`
	Documents int `json:"documents"`
}

// BackupMetadata is the record written to backup_metadata.json.
type BackupMetadata struct {
	TimestampBackup string       `json:"timestamp_backup"`
	ChatFolders     []ChatFolder `json:"chat_folders"`
	MediaStats      MediaStats   `json:"media_stats"`
}

// RunRecord is one row of the run history catalog.
type RunRecord struct {
	Timestamp   string
	StartedAt   time.Time
	Destination string
	BackupDir   string
	Outcome     string
	Stats       MediaStats
}
