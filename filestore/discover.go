package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"horoscope-api/forecast"
)

// unsafeSignChars would escape the data directory or widen the glob.
const unsafeSignChars = `/\*?[]`

// Discover finds the CSV file answering (period, sign, hint) in dir.
//
// Files follow <sign>_<yyyy-mm>_<period><suffix>.csv. When hint is set the
// first file embedding <sign>_<hint>_ wins; otherwise, or when nothing embeds
// the hint, the most recently modified match wins. An empty path means no
// source exists, which is not an error; a directory that exists but cannot be
// listed is a LoadError.
func Discover(dir string, period forecast.Period, sign, hint string) (string, error) {
	if sign == "" || strings.ContainsAny(sign, unsafeSignChars) || strings.Contains(sign, "..") {
		return "", nil
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", &LoadError{Path: dir, Err: err}
	}

	pattern := fmt.Sprintf("%s_*_%s*.csv", sign, period)
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := filepath.Match(pattern, e.Name())
		if err != nil {
			return "", fmt.Errorf("match %s: %w", pattern, err)
		}
		if ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return "", nil
	}

	if hint != "" {
		needle := fmt.Sprintf("%s_%s_", sign, hint)
		for _, f := range files {
			if strings.Contains(filepath.Base(f), needle) {
				return f, nil
			}
		}
	}

	return newest(files)
}

type candidate struct {
	path  string
	mtime int64
}

// newest returns the most recently modified path. Files that vanish while
// being inspected sort last. Equal mtimes fall back to name, descending.
func newest(files []string) (string, error) {
	candidates := make([]candidate, 0, len(files))
	for _, f := range files {
		info, err := os.Stat(f)
		switch {
		case err == nil:
			candidates = append(candidates, candidate{path: f, mtime: info.ModTime().UnixNano()})
		case errors.Is(err, fs.ErrNotExist):
			candidates = append(candidates, candidate{path: f})
		default:
			return "", &LoadError{Path: f, Err: err}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].mtime != candidates[j].mtime {
			return candidates[i].mtime > candidates[j].mtime
		}
		return candidates[i].path > candidates[j].path
	})
	return candidates[0].path, nil
}
