// Package dir provides an export sink that writes files to a directory.
package dir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driven"
	"github.com/custodia-labs/mbsearch/internal/logger"
)

// Ensure Sink implements the interface.
var _ driven.ExportSink = (*Sink)(nil)

// maxSuffix bounds the search for a free filename.
const maxSuffix = 1000

// Sink writes export files into a directory. Existing files are never
// overwritten: a numeric suffix is added instead.
type Sink struct {
	dir string
}

// NewSink creates a sink writing to dir.
// If dir is empty, the current working directory is used.
func NewSink(dir string) (*Sink, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve export directory: %w", err)
	}
	return &Sink{dir: abs}, nil
}

// Dir returns the target directory.
func (s *Sink) Dir() string {
	return s.dir
}

// Deliver writes the artifact and returns its path.
func (s *Sink) Deliver(ctx context.Context, a domain.ExportArtifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := filepath.Base(a.Filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("%w: invalid filename %q", domain.ErrInvalidInput, a.Filename)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".mbsearch-export-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close export: %w", err)
	}

	path, err := s.claim(name)
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("move export into place: %w", err)
	}

	logger.Debug("Export written: %s (%d bytes)", path, len(a.Data))
	return path, nil
}

// claim returns the first unused path for name: name, name-1, name-2...
func (s *Sink) claim(name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < maxSuffix; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		path := filepath.Join(s.dir, candidate)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
	}
	return "", fmt.Errorf("no free filename for %s in %s", name, s.dir)
}
