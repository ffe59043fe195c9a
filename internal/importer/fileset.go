// Package importer implements the ingestion pipeline: candidate discovery,
// header filtering, volume grouping, deduplication against the catalog,
// storage writes, thumbnails and catalog population.
package importer

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ExpandPath flattens a file-or-directory input into a lexicographically
// sorted list of absolute regular-file paths. Symbolic links are excluded.
// Anything that is neither a file nor a directory expands to an empty list;
// the caller treats that as nothing to do.
func ExpandPath(path string) []string {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}

	var files []string

	if info.IsDir() {
		_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.Type().IsRegular() {
				if abs, err := filepath.Abs(p); err == nil {
					files = append(files, abs)
				}
			}
			return nil
		})
	} else if info.Mode().IsRegular() {
		if abs, err := filepath.Abs(path); err == nil {
			files = append(files, abs)
		}
	}

	// Sorted input keeps volume numbering and test output deterministic.
	sort.Strings(files)
	return files
}
