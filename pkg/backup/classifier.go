package backup

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// TimestampLayout is the date suffix embedded into every staged file name.
const TimestampLayout = "2006.01.02_15.04"

const dateOnlyLayout = "2006.01.02"

var (
	datePattern       = regexp.MustCompile(`_(\d{4}\.\d{2}\.\d{2})(?:_(\d{2}\.\d{2}))?`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// copySuffixPattern matches a trailing " - копия" / " - copy" with an optional
// " (2)" counter.
var copySuffixPattern = regexp.MustCompile(`(?i)\s*[-–—]\s*(?:копия|copy)(?:\s*\(\d+\))?\s*$`)

var archiveExtensions = []string{".zip", ".7z"}

type Classifier struct {
	inUseExtensions []string
}

func NewClassifier(inUseExtensions []string) *Classifier {
	return &Classifier{inUseExtensions: inUseExtensions}
}

// Classify derives the identity of a file from its name. IsInUse is left
// unset, see IsInUse.
func (c *Classifier) Classify(path string) Classification {
	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, extension(name))

	class := Classification{Stem: stem, IsOriginal: true}

	prefix := stem
	if loc := datePattern.FindStringIndex(stem); loc != nil {
		prefix = stem[:loc[0]]
		class.IsOriginal = false
	}

	cleaned := copySuffixPattern.ReplaceAllString(prefix, "")
	class.CopySuffixed = cleaned != prefix
	class.BaseName = whitespacePattern.ReplaceAllString(strings.TrimSpace(cleaned), "_")

	return class
}

// IsInUse reports whether any in-use marker sibling (path + marker) exists.
func (c *Classifier) IsInUse(path string) bool {
	for _, marker := range c.inUseExtensions {
		if marker == "" {
			continue
		}

		if _, err := os.Lstat(path + marker); err == nil {
			return true
		}
	}

	return false
}

// ParseArchiveName splits an archive file name such as
// "sales_2025.06.01_14.22.dbx.zip" into its group key ("sales.dbx") and the
// embedded timestamp. ok is false for names that are not dated archives.
func ParseArchiveName(name string) (groupKey string, ts time.Time, ok bool) {
	base, isArchive := trimArchiveExtension(name)
	if !isArchive {
		return "", time.Time{}, false
	}

	m := datePattern.FindStringSubmatchIndex(base)
	if m == nil {
		return "", time.Time{}, false
	}

	date := base[m[2]:m[3]]
	layout := dateOnlyLayout
	if m[4] >= 0 {
		date += "_" + base[m[4]:m[5]]
		layout = TimestampLayout
	}

	ts, err := time.ParseInLocation(layout, date, time.Local)
	if err != nil {
		return "", time.Time{}, false
	}

	return base[:m[0]] + base[m[1]:], ts, true
}

func trimArchiveExtension(name string) (string, bool) {
	lower := strings.ToLower(name)

	for _, ext := range archiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)], true
		}
	}

	return name, false
}

func hasAllowedExtension(name string, allowed []string) bool {
	lower := strings.ToLower(name)

	for _, ext := range allowed {
		if ext != "" && strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}

	return false
}

func extension(name string) string {
	return filepath.Ext(name)
}
