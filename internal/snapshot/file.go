// internal/snapshot/file.go
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gymnexus/internal/membership"
)

// FileStore keeps snapshots as files under one directory.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// Save writes <dir>/<name>.gym atomically and returns its path.
func (s *FileStore) Save(ctx context.Context, name string, members []membership.Member) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid snapshot name %q", name)
	}
	if !strings.HasSuffix(strings.ToLower(base), Extension) {
		base += Extension
	}
	path := filepath.Join(s.dir, base)

	_, data, err := Encode(members, s.now())
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".snapshot-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename snapshot: %w", err)
	}

	return path, nil
}

// Load reads a snapshot from the store's directory. Only the base name of
// location is used, so a full path returned by Save works but nothing outside
// the directory can be read.
func (s *FileStore) Load(ctx context.Context, location string) ([]membership.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := filepath.Base(strings.TrimSpace(location))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: %q", ErrSnapshotNotFound, name)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrSnapshotNotFound, name)
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			err = pathErr.Err
		}
		return nil, fmt.Errorf("read snapshot %q: %w", name, err)
	}

	_, members, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", name, err)
	}
	return members, nil
}
