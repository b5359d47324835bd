package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidPath  = errors.New("invalid file path")
)

// FileStore is the object storage used for meeting attachments
type FileStore interface {
	Put(ctx context.Context, filePath string, r io.Reader) (int64, error)
	Open(ctx context.Context, filePath string) (io.ReadCloser, error)
	Remove(ctx context.Context, filePath string) error
	Exists(ctx context.Context, filePath string) (bool, error)
}

// AferoStore keeps files under a bucket directory of an afero filesystem
type AferoStore struct {
	fs     afero.Fs
	bucket string
}

// NewAferoStore creates a store rooted at bucket inside fs
func NewAferoStore(fs afero.Fs, bucket string) *AferoStore {
	return &AferoStore{fs: fs, bucket: strings.Trim(bucket, "/")}
}

// NewOSStore stores files on local disk under root/bucket
func NewOSStore(root, bucket string) *AferoStore {
	return NewAferoStore(afero.NewBasePathFs(afero.NewOsFs(), root), bucket)
}

// NewMemStore is an in-memory store
func NewMemStore(bucket string) *AferoStore {
	return NewAferoStore(afero.NewMemMapFs(), bucket)
}

func (s *AferoStore) resolve(filePath string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(filePath))
	if clean == "/" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, filePath)
	}
	return path.Join("/", s.bucket, clean), nil
}

func (s *AferoStore) Put(ctx context.Context, filePath string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	full, err := s.resolve(filePath)
	if err != nil {
		return 0, err
	}
	if err := s.fs.MkdirAll(path.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", filePath, err)
	}

	f, err := s.fs.Create(full)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", filePath, err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return n, fmt.Errorf("failed to write %s: %w", filePath, err)
	}
	return n, nil
}

func (s *AferoStore) Open(ctx context.Context, filePath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(filePath)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
		}
		return nil, fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	return f, nil
}

// Remove deletes a stored file. Removing a missing file is an error.
func (s *AferoStore) Remove(ctx context.Context, filePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(filePath)
	if err != nil {
		return err
	}

	exists, err := afero.Exists(s.fs, full)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", filePath, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
	}

	if err := s.fs.Remove(full); err != nil {
		return fmt.Errorf("failed to remove %s: %w", filePath, err)
	}
	return nil
}

func (s *AferoStore) Exists(ctx context.Context, filePath string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	full, err := s.resolve(filePath)
	if err != nil {
		return false, err
	}
	return afero.Exists(s.fs, full)
}
