package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
	"github.com/johnquangdev/meeting-reporter/internal/domain/repositories"
)

const (
	tempPrefix = ".tmp-"
	reportExt  = ".json"
)

// isReportKey reports whether key names a report record directly under
// prefix: a *.json object that is not an in-flight temp file.
func isReportKey(prefix, key string) bool {
	dir := strings.Trim(prefix, "/")
	rest := strings.TrimPrefix(key, dir+"/")
	if rest == key || rest == "" || strings.Contains(rest, "/") {
		return false
	}
	return strings.HasSuffix(rest, reportExt) && len(rest) > len(reportExt) && !strings.HasPrefix(rest, tempPrefix)
}

// LocalStore keeps report records on the local filesystem under root
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at dir
func NewLocalStore(dir string) (*LocalStore, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Root returns the absolute storage root
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

// Write replaces the record at key atomically: the bytes go to a temp file
// in the target directory, which is synced and then renamed over the target.
func (s *LocalStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+filepath.Base(path)+"-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to sync report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("failed to move report into place: %w", err)
	}
	committed = true

	return path, nil
}

// Read returns the record stored at key
func (s *LocalStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", entities.ErrReportNotFound, key)
		}
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return data, nil
}

// ListRecent lists the report records directly under prefix ordered by
// modification time, newest first. Other files and subdirectories are ignored.
func (s *LocalStore) ListRecent(ctx context.Context, prefix string, limit int) ([]repositories.ReportObject, error) {
	base, err := s.resolve(prefix)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	var objects []repositories.ReportObject
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key := path.Join(filepath.ToSlash(prefix), entry.Name())
		if !entry.Type().IsRegular() || !isReportKey(prefix, key) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to list reports: %w", err)
		}
		objects = append(objects, repositories.ReportObject{
			Key:        key,
			Location:   filepath.Join(base, entry.Name()),
			ModifiedAt: info.ModTime(),
		})
	}

	sort.Slice(objects, func(i, j int) bool {
		if !objects[i].ModifiedAt.Equal(objects[j].ModifiedAt) {
			return objects[i].ModifiedAt.After(objects[j].ModifiedAt)
		}
		return objects[i].Key < objects[j].Key
	})

	if limit > 0 && len(objects) > limit {
		objects = objects[:limit]
	}
	return objects, nil
}

// Ping checks that the storage root is usable
func (s *LocalStore) Ping(ctx context.Context) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("storage root unavailable: %w", err)
	}
	return nil
}
