// Package loader reads a directory of JSON record files.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/umee-network/wallet-registry/internal/log"
	"github.com/umee-network/wallet-registry/internal/record"
)

// ErrNotObject is returned, wrapped in a ParseError, for a file holding a JSON
// value other than an object.
var ErrNotObject = record.ErrNotObject

// DefaultConcurrency bounds how many files are read at once.
const DefaultConcurrency = 8

// Loader reads every file of a directory as one JSON document.
type Loader struct {
	concurrency int
	logger      *log.Logger
}

// New creates a loader. A concurrency below 1 means DefaultConcurrency.
// If logger is nil, log.Default() is used.
func New(concurrency int, logger *log.Logger) *Loader {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{
		concurrency: concurrency,
		logger:      logger.ApplyPrefix("[loader]"),
	}
}

// Load reads all files in dir, in file name order.
//
// A missing or empty directory is not an error: it is logged and Load returns
// nil, nil. A file that cannot be read or is not a single JSON object fails
// the whole load.
func (l *Loader) Load(ctx context.Context, dir string) ([]record.Document, error) {
	l.logger.Info("extracting records", "dir", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("directory does not exist, skipping", "dir", dir)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		l.logger.Warn("no files found, skipping", "dir", dir)
		return nil, nil
	}

	docs := make([]record.Document, len(paths))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(l.concurrency)

	for i, path := range paths {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			doc, err := LoadFile(path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	l.logger.Debug("extracted records", "dir", dir, "count", len(docs))
	return docs, nil
}

// LoadFile reads and decodes a single JSON document.
func LoadFile(path string) (record.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	doc, err := record.Decode(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return doc, nil
}

// ParseError reports a file whose content is not a single JSON object.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
