// util/files.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type textFile struct {
	modTime time.Time
	lines   []string
}

// FileCache holds the decoded lines of recently read text files. Route
// scripts commonly include the same file many times, so it's worth
// keeping the decoded text around rather than going back to the disk and
// re-running the decoder each time. Entries are invalidated when the
// file's modification time changes.
type FileCache struct {
	cache *expirable.LRU[string, textFile]
	// Encoding, if set, overrides per-file encoding detection.
	Encoding string
}

func NewFileCache(size int, encoding string) *FileCache {
	return &FileCache{
		cache:    expirable.NewLRU[string, textFile](size, nil, 10*time.Minute),
		Encoding: encoding,
	}
}

// ReadLines returns the decoded lines of the text file at path.
func (fc *FileCache) ReadLines(path string) ([]string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	key := filepath.Clean(path)
	if fc != nil {
		tf, ok := fc.cache.Get(key)
		if ok && tf.modTime.Equal(fi.ModTime()) {
			return tf.lines, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var forced string
	if fc != nil {
		forced = fc.Encoding
	}
	text, err := DecodeText(data, forced)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(text, "\n")

	if fc != nil {
		fc.cache.Add(key, textFile{modTime: fi.ModTime(), lines: lines})
	}
	return lines, nil
}

// ResolvePath finds a file referenced from within base (a file path). The
// name is tried as given and then relative to base's directory; if
// neither exists, the relative form is returned along with false.
func ResolvePath(base, name string) (string, bool) {
	name = filepath.FromSlash(strings.ReplaceAll(TrimQuotes(name), "\\", "/"))
	if filepath.IsAbs(name) {
		_, err := os.Stat(name)
		return name, err == nil
	}
	rel := filepath.Join(filepath.Dir(base), name)
	if _, err := os.Stat(rel); err == nil {
		return rel, true
	}
	if _, err := os.Stat(name); err == nil {
		return name, true
	}
	return rel, false
}
