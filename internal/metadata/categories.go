package metadata

import (
	"fmt"
	"strings"
)

type Category int

const (
	CategoryNone Category = iota
	CategoryImages
	CategoryVideos
	CategoryAudio
	CategoryDocuments
)

// Media folder names as WhatsApp creates them on the device.
const (
	FolderImages    = "WhatsApp Images"
	FolderVideo     = "WhatsApp Video"
	FolderAudio     = "WhatsApp Audio"
	FolderDocuments = "WhatsApp Documents"
)

var recognizedFolders = map[string]bool{
	FolderImages:    true,
	FolderVideo:     true,
	FolderAudio:     true,
	FolderDocuments: true,
}

// IsMediaFolder reports whether name is one of the WhatsApp media folders.
func IsMediaFolder(name string) bool {
	return recognizedFolders[name]
}

// Matcher maps a folder name to the counter it contributes to.
type Matcher func(folder string) Category

// SubstringMatcher picks the first category keyword contained in the
// folder name. A folder such as "Video Images" counts as images.
func SubstringMatcher(folder string) Category {
	switch {
	case strings.Contains(folder, "Images"):
		return CategoryImages
	case strings.Contains(folder, "Video"):
		return CategoryVideos
	case strings.Contains(folder, "Audio"):
		return CategoryAudio
	case strings.Contains(folder, "Documents"):
		return CategoryDocuments
	}
	return CategoryNone
}

// ExactMatcher only accepts the exact WhatsApp folder names.
func ExactMatcher(folder string) Category {
	switch folder {
	case FolderImages:
		return CategoryImages
	case FolderVideo:
		return CategoryVideos
	case FolderAudio:
		return CategoryAudio
	case FolderDocuments:
		return CategoryDocuments
	}
	return CategoryNone
}

// MatcherFor resolves the category_match configuration value.
func MatcherFor(policy string) (Matcher, error) {
	switch policy {
	case "", "substring":
		return SubstringMatcher, nil
	case "exact":
		return ExactMatcher, nil
	}
	return nil, fmt.Errorf("unknown category match policy %q", policy)
}
