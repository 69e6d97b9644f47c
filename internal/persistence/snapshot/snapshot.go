// Package snapshot writes zstd-compressed profile snapshots: a JSON header
// line followed by the raw profile blob. Snapshots are periodic backups and
// an export/import format; the SQLite store stays the live source.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
)

type Header struct {
	Version int       `json:"version"`
	UserID  string    `json:"user_id"`
	SavedAt time.Time `json:"saved_at"`
}

const headerVersion = 1

// Write stores the profile blob for userID at path, creating parent
// directories as needed. The encoder buffers, so most I/O errors only
// surface on the final flush; every close error is returned, never
// deferred away, or a full disk would report a successful snapshot.
func Write(path, userID string, blob []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		f.Close()
		return err
	}

	hb, _ := json.Marshal(Header{Version: headerVersion, UserID: userID, SavedAt: time.Now().UTC()})
	hb = append(hb, '\n')
	if _, err := enc.Write(hb); err == nil {
		_, err = enc.Write(blob)
	}
	if err != nil {
		enc.Close()
		f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("flush snapshot: %w", err)
	}
	return f.Close()
}

// Read returns the header and profile blob stored at path.
func Read(path string) (Header, []byte, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, nil, err
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	headerLine, err := br.ReadBytes('\n')
	if err != nil {
		return h, nil, fmt.Errorf("read snapshot header: %w", err)
	}
	if err := json.Unmarshal(bytes.TrimSpace(headerLine), &h); err != nil {
		return h, nil, fmt.Errorf("decode snapshot header: %w", err)
	}
	if h.Version != headerVersion {
		return h, nil, fmt.Errorf("unsupported snapshot version %d", h.Version)
	}

	var blob bytes.Buffer
	if _, err := blob.ReadFrom(br); err != nil {
		return h, nil, fmt.Errorf("read snapshot body: %w", err)
	}
	return h, blob.Bytes(), nil
}

// PathFor returns the snapshot file location for a user under dataDir.
func PathFor(dataDir, userID string, at time.Time) string {
	return filepath.Join(dataDir, "snapshots", userID,
		fmt.Sprintf("profile-%s.json.zst", at.UTC().Format("20060102-150405")))
}

// Latest returns the newest snapshot path for a user, or "" when none
// exists.
func Latest(dataDir, userID string) string {
	dir := filepath.Join(dataDir, "snapshots", userID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	newest := ""
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != ".zst" {
			continue
		}
		if name > newest {
			newest = name
		}
	}
	if newest == "" {
		return ""
	}
	return filepath.Join(dir, newest)
}
