package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
)

func TestWriteRead_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	path := PathFor(dir, "u1", at)

	blob := []byte(`{"level":3,"xp":40,"coins":125}`)
	if err := Write(path, "u1", blob); err != nil {
		t.Fatalf("write: %v", err)
	}

	h, got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if h.Version != 1 {
		t.Fatalf("header version=%d want 1", h.Version)
	}
	if h.UserID != "u1" {
		t.Fatalf("header user=%q want u1", h.UserID)
	}
	if string(got) != string(blob) {
		t.Fatalf("blob mismatch: got=%q want=%q", got, blob)
	}
}

func TestRead_RejectsUnknownVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json.zst")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	if _, err := enc.Write([]byte(`{"version":99,"user_id":"u1"}` + "\n{}")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close enc: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, _, err := Read(path); err == nil {
		t.Fatalf("expected version error")
	}
}

func TestRead_BlobPreservesNewlines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.json.zst")

	blob := []byte("line1\nline2\nline3")
	if err := Write(path, "u2", blob); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(blob) {
		t.Fatalf("blob mismatch: got=%q", got)
	}
}

func TestWrite_ReportsFullDeviceErrors(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	// Compressed output is buffered, so the device error only surfaces on
	// the final flush; it must still fail the call.
	if err := Write("/dev/full", "u1", []byte(`{"level":1}`)); err == nil {
		t.Fatalf("expected write error on full device")
	}
}

func TestLatest_PicksNewest(t *testing.T) {
	dir := t.TempDir()
	times := []time.Time{
		time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 10, 18, 30, 0, 0, time.UTC),
		time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
	}
	for i, at := range times {
		p := PathFor(dir, "u1", at)
		if err := Write(p, "u1", []byte{byte('a' + i)}); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	latest := Latest(dir, "u1")
	want := PathFor(dir, "u1", times[1])
	if latest != want {
		t.Fatalf("latest=%q want %q", latest, want)
	}
	_, blob, err := Read(latest)
	if err != nil {
		t.Fatalf("read latest: %v", err)
	}
	if string(blob) != "b" {
		t.Fatalf("latest blob=%q want b", blob)
	}
}

func TestLatest_EmptyWhenNoSnapshots(t *testing.T) {
	dir := t.TempDir()
	if got := Latest(dir, "nobody"); got != "" {
		t.Fatalf("latest=%q want empty", got)
	}
	// Non-snapshot files in the directory are ignored.
	sub := filepath.Join(dir, "snapshots", "u1")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := Latest(dir, "u1"); got != "" {
		t.Fatalf("latest=%q want empty", got)
	}
}
