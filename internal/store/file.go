package store

import (
	"context"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore writes one file per key under dataDir.
type FileStore struct {
	mu      sync.RWMutex
	dataDir string
}

// NewFileStore creates dataDir if needed.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dataDir: dataDir}, nil
}

const (
	fileExt   = ".json"
	hexPrefix = "x_"
)

// filePath maps a key to a safe file name. Plain keys stay readable
// (":" becomes "__"); anything else is hex encoded.
func (s *FileStore) filePath(key string) string {
	return filepath.Join(s.dataDir, fileName(key)+fileExt)
}

func fileName(key string) string {
	name := strings.ReplaceAll(key, ":", "__")
	if ambiguous(key) || strings.HasPrefix(name, hexPrefix) || !safeName(name) {
		return hexPrefix + hex.EncodeToString([]byte(key))
	}
	return name
}

// ambiguous reports keys whose "__" spelling would not map back: an
// underscore already sits where a ":" would expand.
func ambiguous(key string) bool {
	return strings.Contains(key, "__") || strings.Contains(key, "_:") || strings.Contains(key, ":_")
}

// keyFromName reverses fileName.
func keyFromName(name string) (string, bool) {
	if rest, ok := strings.CutPrefix(name, hexPrefix); ok {
		b, err := hex.DecodeString(rest)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
	return strings.ReplaceAll(name, "__", ":"), true
}

func safeName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '.':
		default:
			return false
		}
	}
	return true
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, err := os.ReadFile(s.filePath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// Put writes to a temp file and renames it over the previous save.
func (s *FileStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.filePath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.filePath(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), fileExt)
		if e.IsDir() || !ok {
			continue
		}
		key, ok := keyFromName(name)
		if ok && strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FileStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.dataDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("store: data dir is not a directory")
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
