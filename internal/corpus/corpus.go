// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus reads the cleaned filing texts of one company from disk and
// removes them again on request.
//
// Documents are always returned in lexicographic path order. File names carry
// the filing year first, so that order groups the corpus chronologically.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/filing-cloud/internal/logging"
	"github.com/pdiddy/filing-cloud/pkg/types"
)

// Skip records a file that could not be read.
type Skip struct {
	Path string
	Err  error
}

// Report summarizes a load.
type Report struct {
	Loaded  int
	Skipped []Skip
}

// HasSkips reports whether any file was skipped.
func (r Report) HasSkips() bool {
	return len(r.Skipped) > 0
}

// CheckSymbol rejects symbols that cannot name a single directory below the
// data dir. Tickers use letters, digits, '.', '-' and '_' (e.g. BRK.B).
func CheckSymbol(symbol string) error {
	if symbol == "" {
		return errors.New("symbol must not be empty")
	}
	if strings.Trim(symbol, ".") == "" || strings.Contains(symbol, "..") {
		return fmt.Errorf("invalid symbol %q", symbol)
	}
	for _, r := range symbol {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == '_':
		default:
			return fmt.Errorf("invalid symbol %q: character %q not allowed", symbol, r)
		}
	}
	return nil
}

// Dir returns the corpus directory for symbol under dataDir. The result is
// always a direct child of dataDir.
func Dir(dataDir, symbol string) (string, error) {
	if err := CheckSymbol(symbol); err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "data-"+symbol), nil
}

// YearRange returns the lowest and highest filing year found in the names of
// the files below dir, which are written as <year>_<accession>_cleaned.txt.
// ok is false when no file carries a year prefix.
func YearRange(dir string) (start, end int, ok bool) {
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		prefix, _, found := strings.Cut(d.Name(), "_")
		if !found || len(prefix) != 4 {
			return nil
		}
		year, convErr := strconv.Atoi(prefix)
		if convErr != nil || year < 1 {
			return nil
		}
		if !ok || year < start {
			start = year
		}
		if !ok || year > end {
			end = year
		}
		ok = true
		return nil
	})
	return start, end, ok
}

// Load reads every regular file below dir, recursively. A missing directory is
// an empty corpus. Unreadable entries are skipped and recorded in the report.
func Load(dir string, logger *log.Logger) ([]types.Document, Report) {
	logger = logging.OrDiscard(logger)

	var paths []string
	var report Report

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			logger.Warn("skipping unreadable entry", "path", path, "err", err)
			report.Skipped = append(report.Skipped, Skip{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("corpus directory does not exist", "dir", dir)
		} else {
			logger.Warn("cannot read corpus directory", "dir", dir, "err", err)
			report.Skipped = append(report.Skipped, Skip{Path: dir, Err: err})
		}
		return nil, report
	}

	docs, fileReport := LoadPaths(paths, logger)
	report.Loaded = fileReport.Loaded
	report.Skipped = append(report.Skipped, fileReport.Skipped...)
	return docs, report
}

// LoadPaths reads the given files in lexicographic order. Missing or
// unreadable files are skipped and recorded; the rest are returned.
func LoadPaths(paths []string, logger *log.Logger) ([]types.Document, Report) {
	logger = logging.OrDiscard(logger)

	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	var report Report
	docs := make([]types.Document, 0, len(sorted))
	for _, p := range sorted {
		data, err := os.ReadFile(p)
		if err != nil {
			logger.Warn("skipping document", "path", p, "err", err)
			report.Skipped = append(report.Skipped, Skip{Path: p, Err: err})
			continue
		}
		docs = append(docs, types.Document{Path: p, Text: string(data)})
	}
	report.Loaded = len(docs)
	logger.Debug("loaded corpus", "documents", report.Loaded, "skipped", len(report.Skipped))
	return docs, report
}

// Cleanup deletes the corpus directory and each artifact. Targets that do not
// exist are ignored.
func Cleanup(dir string, artifacts ...string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing corpus directory %s: %w", dir, err)
	}
	for _, a := range artifacts {
		if a == "" {
			continue
		}
		if err := os.Remove(a); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", a, err)
		}
	}
	return nil
}
