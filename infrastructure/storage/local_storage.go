package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage serves images from a directory, for development and tests.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid storage root %q: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage root %q is not a directory", abs)
	}

	return &LocalStorage{root: abs}, nil
}

func (s *LocalStorage) Driver() string {
	return DriverLocal
}

func (s *LocalStorage) GetFileStream(ctx context.Context, uri string) (io.ReadCloser, error) {
	start := time.Now()

	file, err := s.open(ctx, uri)
	observe(DriverLocal, uri, start, err)
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (s *LocalStorage) open(ctx context.Context, uri string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(uri)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// resolve maps uri to a file under the root. Relative paths are joined to
// the root; absolute paths must already lie inside it.
func (s *LocalStorage) resolve(uri string) (string, error) {
	p := filepath.FromSlash(strings.TrimPrefix(uri, "file://"))
	if p == "" {
		return "", fmt.Errorf("empty path")
	}

	full := p
	if !filepath.IsAbs(p) {
		full = filepath.Join(s.root, p)
	}
	full = filepath.Clean(full)

	rel, err := filepath.Rel(s.root, full)
	if err != nil || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("path %q is outside the storage root", uri)
	}
	return full, nil
}
