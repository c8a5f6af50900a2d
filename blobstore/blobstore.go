// Package blobstore stores raw uploaded audio files on the local filesystem.
// In the containerized deployment the base path points at the volume shared
// with the transcriber service.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Storage defines the operations the upload flow needs over raw audio blobs.
type Storage interface {
	// Save writes data from reader to the named file.
	Save(ctx context.Context, name string, reader io.Reader) error

	// Open returns a reader for the named file.
	// The caller is responsible for closing the returned ReadCloser.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Exists checks whether the named file exists.
	Exists(ctx context.Context, name string) (bool, error)

	// Delete removes the named file. Returns nil if it does not exist.
	Delete(ctx context.Context, name string) error

	// Path returns the absolute filesystem path for the named file.
	Path(name string) string
}

// Local implements Storage on the local filesystem.
type Local struct {
	basePath string
}

// NewLocal creates a local blobstore rooted at basePath, creating the
// directory if needed.
func NewLocal(basePath string) (*Local, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("blobstore: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("blobstore: create base directory: %w", err)
	}
	return &Local{basePath: abs}, nil
}

// Save writes data from reader to a local file under the base path.
func (s *Local) Save(_ context.Context, name string, reader io.Reader) error {
	fullPath := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return fmt.Errorf("blobstore: create directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("blobstore: create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return fmt.Errorf("blobstore: write file: %w", err)
	}
	return nil
}

// Open returns a reader for the local file with the given name.
func (s *Local) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blobstore: file not found: %s", name)
		}
		return nil, fmt.Errorf("blobstore: open file: %w", err)
	}
	return f, nil
}

// Exists checks whether the named file exists under the base path.
func (s *Local) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("blobstore: stat file: %w", err)
	}
	return true, nil
}

// Delete removes the named file. Missing files are not an error.
func (s *Local) Delete(_ context.Context, name string) error {
	if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blobstore: delete file: %w", err)
	}
	return nil
}

// Path returns the absolute path for name under the base directory. The
// name is cleaned so it cannot escape the base path.
func (s *Local) Path(name string) string {
	return filepath.Join(s.basePath, filepath.Clean("/"+name))
}
