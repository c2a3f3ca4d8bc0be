// Package disk abstracts the filesystem holding staged import files and
// product images. Two drivers exist: a local directory tree and an S3 bucket.
package disk

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tuanvumaihuynh/planner-shop/internal/config"
)

// ErrNotExist is returned by Get when no file exists at the path.
var ErrNotExist = errors.New("file does not exist")

// FileInfo describes one regular file directly inside a directory.
type FileInfo struct {
	Name string
	Size int64
}

// Disk is the storage driver interface. Paths are slash separated and
// relative to the disk root.
type Disk interface {
	// Put writes r to path, creating parent directories as needed.
	Put(ctx context.Context, path string, r io.Reader) error

	// Get returns the full content of the file at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether a regular file exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// Files lists the regular files directly inside directory, sorted by name.
	Files(ctx context.Context, directory string) ([]FileInfo, error)

	// DirectoryExists reports whether directory exists.
	DirectoryExists(ctx context.Context, directory string) (bool, error)

	// MakeDirectory creates directory and any parents. It is idempotent.
	MakeDirectory(ctx context.Context, directory string) error

	// URL returns a reference to path suitable for storing on a record.
	URL(path string) string
}

// New builds the disk selected by cfg.
func New(ctx context.Context, cfg config.Storage) (Disk, error) {
	switch cfg.Disk {
	case config.DiskDriverLocal:
		return NewLocal(cfg.LocalRoot)
	case config.DiskDriverS3:
		d, err := NewS3(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("new s3 disk: %w", err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unsupported storage disk: %s", cfg.Disk)
	}
}
