package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	appErr "codearena/pkg/errors"
)

const (
	dataSuffix = ".data"
	metaSuffix = ".meta.json"
	tempSuffix = ".tmp"
)

type fileMeta struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// FileStore keeps one data file and one meta file per key under rootDir,
// so separate processes see the same entries.
type FileStore struct {
	rootDir string
	mu      sync.Mutex
}

// NewFileStore creates the root directory when missing.
func NewFileStore(rootDir string) (*FileStore, error) {
	if rootDir == "" {
		return nil, appErr.New(appErr.CacheError).WithMessage("cache root is not configured")
	}
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, appErr.Wrapf(err, appErr.CacheError, "create cache dir failed")
	}
	return &FileStore{rootDir: rootDir}, nil
}

func (f *FileStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	meta, err := f.readMeta(key)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if meta.expired(time.Now()) {
		f.removeLocked(key)
		return "", nil
	}
	data, err := os.ReadFile(f.path(key, dataSuffix))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", appErr.Wrapf(err, appErr.CacheError, "read cache entry failed")
	}
	return string(data), nil
}

func (f *FileStore) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	meta := fileMeta{Key: key}
	if ttl > 0 {
		meta.ExpiresAt = time.Now().Add(ttl)
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return appErr.Wrapf(err, appErr.CacheSetFailed, "encode cache meta failed")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := writeAtomic(f.path(key, dataSuffix), []byte(value)); err != nil {
		return err
	}
	return writeAtomic(f.path(key, metaSuffix), metaBytes)
}

func (f *FileStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		f.removeLocked(key)
	}
	return nil
}

func (f *FileStore) Keys(_ context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.rootDir)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.CacheError, "list cache dir failed")
	}
	now := time.Now()
	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, metaSuffix) {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, metaSuffix))
		if err != nil || !strings.HasPrefix(key, prefix) {
			continue
		}
		meta, err := f.readMeta(key)
		if err != nil {
			continue
		}
		if meta.expired(now) {
			f.removeLocked(key)
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (f *FileStore) Close() error {
	return nil
}

func (f *FileStore) readMeta(key string) (fileMeta, error) {
	var meta fileMeta
	data, err := os.ReadFile(f.path(key, metaSuffix))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return meta, err
		}
		return meta, appErr.Wrapf(err, appErr.CacheError, "read cache meta failed")
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, appErr.Wrapf(err, appErr.CacheError, "decode cache meta failed")
	}
	return meta, nil
}

func (f *FileStore) removeLocked(key string) {
	_ = os.Remove(f.path(key, dataSuffix))
	_ = os.Remove(f.path(key, metaSuffix))
}

func (f *FileStore) path(key, suffix string) string {
	return filepath.Join(f.rootDir, url.PathEscape(key)+suffix)
}

func (m fileMeta) expired(now time.Time) bool {
	return !m.ExpiresAt.IsZero() && now.After(m.ExpiresAt)
}

func writeAtomic(path string, data []byte) error {
	tmp := path + tempSuffix
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return appErr.Wrapf(err, appErr.CacheSetFailed, "write cache file failed")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return appErr.Wrapf(err, appErr.CacheSetFailed, "commit cache file failed")
	}
	return nil
}
