// Package fsmetrics collects static file-count evidence from a project
// working tree.
package fsmetrics

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// CountResult is a tagged file count. Missing and Err let callers tell
// "zero because the subtree is empty" apart from "zero because the
// subtree could not be read".
type CountResult struct {
	Count   int
	Missing bool
	Err     error
}

// CountFiles walks root recursively and returns the number of regular
// files whose base name matches any of the given glob patterns. Any
// directory whose name appears in excludeDirs is pruned entirely.
//
// A missing root is not an error: the result has Count 0 and Missing
// set. Unreadable subdirectories are skipped rather than aborting the
// walk; the first such error is recorded in Err.
func CountFiles(root string, patterns []string, excludeDirs []string) CountResult {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return CountResult{Missing: true}
	}

	excluded := make(map[string]bool, len(excludeDirs))
	for _, d := range excludeDirs {
		excluded[d] = true
	}

	var res CountResult
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if res.Err == nil {
				res.Err = err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != root && excluded[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if matchAny(patterns, d.Name()) {
			res.Count++
		}
		return nil
	})
	if walkErr != nil && res.Err == nil {
		res.Err = walkErr
	}
	return res
}

// matchAny reports whether name matches at least one glob pattern.
// Patterns are matched against the base name only. An invalid pattern
// never matches; pattern validity is checked at config load time.
func matchAny(patterns []string, name string) bool {
	for _, pat := range patterns {
		if ok, err := path.Match(pat, name); err == nil && ok {
			return true
		}
	}
	return false
}
