package metadata

import (
	"fmt"
	"time"

	"waextract/pkg/models"
)

func newRecord(timestamp string) *models.BackupMetadata {
	return &models.BackupMetadata{
		TimestampBackup: timestamp,
		ChatFolders:     make([]models.ChatFolder, 0),
	}
}

func addFolder(meta *models.BackupMetadata, name string, count int, match Matcher) {
	meta.ChatFolders = append(meta.ChatFolders, models.ChatFolder{
		Name:      name,
		FileCount: count,
	})
	addToStats(&meta.MediaStats, match(name), count)
}

func addToStats(stats *models.MediaStats, cat Category, count int) {
	switch cat {
	case CategoryImages:
		stats.Images += count
	case CategoryVideos:
		stats.Videos += count
	case CategoryAudio:
		stats.Audio += count
	case CategoryDocuments:
		stats.Documents += count
	}
}

// Validate checks the record before it is written: timestamp layout,
// non-negative counts, and that every counter equals the sum of its folders.
func Validate(meta *models.BackupMetadata, match Matcher) error {
	if _, err := time.Parse(models.TimestampLayout, meta.TimestampBackup); err != nil {
		return fmt.Errorf("invalid timestamp_backup %q", meta.TimestampBackup)
	}

	var expected models.MediaStats
	for _, f := range meta.ChatFolders {
		if f.FileCount < 0 {
			return fmt.Errorf("negative file_count for %q", f.Name)
		}
		addToStats(&expected, match(f.Name), f.FileCount)
	}

	if expected != meta.MediaStats {
		return fmt.Errorf("media_stats %+v do not match chat_folders totals %+v", meta.MediaStats, expected)
	}
	return nil
}
