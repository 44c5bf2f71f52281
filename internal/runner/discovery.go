package runner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/baseline-labs/driftwatch/pkg/drift"
)

var detectorExtensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
}

// Discover returns every detector document path under dir, subdirectories
// included, in lexical path order.
func Discover(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read detectors directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("detectors path %s is not a directory", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if detectorExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan detectors directory: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Loaded pairs a detector with the document it came from.
type Loaded struct {
	Path     string
	Detector *drift.Detector
}

// FileError is a non-fatal per-file problem. The file is skipped and the
// run continues; one broken document must not block the healthy ones.
type FileError struct {
	Path    string
	Message string
}

// LoadAll loads every detector document under dir. Documents that fail to
// decode or validate come back as FileErrors instead of aborting the load.
func LoadAll(dir string) ([]Loaded, []FileError, error) {
	paths, err := Discover(dir)
	if err != nil {
		return nil, nil, err
	}

	var loaded []Loaded
	var fileErrors []FileError
	for _, path := range paths {
		d, err := drift.LoadFile(path)
		if err != nil {
			fileErrors = append(fileErrors, FileError{Path: path, Message: err.Error()})
			continue
		}
		loaded = append(loaded, Loaded{Path: path, Detector: d})
	}
	return loaded, fileErrors, nil
}
