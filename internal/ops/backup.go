package ops

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tropicalrevolution/internal/persist"
	"tropicalrevolution/internal/store"
)

const maxSlotBytes = 1 << 20

// BackupSaves archives every save slot as one tar.gz entry per key and
// returns the number of slots written.
func BackupSaves(ctx context.Context, st store.Store, archivePath string) (int, error) {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if archivePath == "" || archivePath == "." {
		return 0, fmt.Errorf("archivePath is required")
	}
	keys, err := saveKeys(ctx, st)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return 0, err
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	now := time.Now().UTC()
	n := 0
	for _, key := range keys {
		b, err := st.Get(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return n, fmt.Errorf("read %s: %w", key, err)
		}
		hdr := &tar.Header{
			Name:    key,
			Mode:    0o644,
			Size:    int64(len(b)),
			ModTime: now,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return n, err
		}
		if _, err := tw.Write(b); err != nil {
			return n, err
		}
		n++
	}

	if err := tw.Close(); err != nil {
		return n, err
	}
	if err := gz.Close(); err != nil {
		return n, err
	}
	return n, f.Close()
}

// RestoreSaves writes every slot found in the archive back into st,
// overwriting existing slots with the same key.
func RestoreSaves(ctx context.Context, st store.Store, archivePath string) (int, error) {
	f, err := os.Open(filepath.Clean(strings.TrimSpace(archivePath)))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return 0, err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	n := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		key, err := archiveKey(hdr.Name)
		if err != nil {
			return n, err
		}
		if hdr.Size > maxSlotBytes {
			return n, fmt.Errorf("slot %s is too large (%d bytes)", key, hdr.Size)
		}
		b, err := io.ReadAll(tr)
		if err != nil {
			return n, err
		}
		if err := st.Put(ctx, key, b); err != nil {
			return n, fmt.Errorf("write %s: %w", key, err)
		}
		n++
	}
	return n, nil
}

// SavesDigest hashes every save slot (key and payload) in key order.
func SavesDigest(ctx context.Context, st store.Store) (string, error) {
	keys, err := saveKeys(ctx, st)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	for _, key := range keys {
		b, err := st.Get(ctx, key)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", key, err)
		}
		_, _ = io.WriteString(h, key)
		_, _ = io.WriteString(h, "\n")
		_, _ = h.Write(b)
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func saveKeys(ctx context.Context, st store.Store) ([]string, error) {
	all, err := st.Keys(ctx, persist.KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	keys := all[:0]
	for _, k := range all {
		if _, err := archiveKey(k); err == nil {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// archiveKey only accepts entries that name a save slot.
func archiveKey(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name != persist.KeyPrefix && !strings.HasPrefix(name, persist.KeyPrefix+":") {
		return "", fmt.Errorf("invalid archive entry %q: not a save slot", name)
	}
	if strings.ContainsAny(name, "/\\") {
		return "", fmt.Errorf("invalid archive entry %q", name)
	}
	return name, nil
}
