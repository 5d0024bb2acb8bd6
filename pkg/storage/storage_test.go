package storage_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JaimeStill/aviary/pkg/storage"
)

func newStore(t *testing.T, policy storage.CollisionPolicy) (storage.System, string) {
	t.Helper()

	root := filepath.Join(t.TempDir(), "uploads")
	cfg := &storage.Config{Root: root, CollisionPolicy: string(policy)}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	sys, err := storage.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return sys, root
}

func entries(t *testing.T, root string) []string {
	t.Helper()
	des, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(des))
	for _, de := range des {
		names = append(names, de.Name())
	}
	return names
}

func TestNewCreatesRoot(t *testing.T) {
	_, root := newStore(t, storage.Overwrite)

	info, err := os.Stat(root)
	if err != nil {
		t.Fatalf("stat root: %v", err)
	}
	if !info.IsDir() {
		t.Error("root is not a directory")
	}
}

func TestSaveOverwrite(t *testing.T) {
	sys, root := newStore(t, storage.Overwrite)
	ctx := context.Background()

	first, err := sys.Save(ctx, "recording_a.wav", strings.NewReader("first-recording"))
	if err != nil {
		t.Fatalf("first Save() error = %v", err)
	}
	if first.Replaced {
		t.Error("first save should not report replaced")
	}

	second, err := sys.Save(ctx, "recording_a.wav", strings.NewReader("second"))
	if err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	if !second.Replaced {
		t.Error("second save should report replaced")
	}
	if second.Name != first.Name {
		t.Errorf("name = %q, want %q", second.Name, first.Name)
	}

	data, err := os.ReadFile(second.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want second (truncated overwrite)", data)
	}
	if second.SizeBytes != int64(len("second")) {
		t.Errorf("size = %d, want %d", second.SizeBytes, len("second"))
	}
	if got := entries(t, root); len(got) != 1 {
		t.Errorf("files = %v, want exactly one", got)
	}
}

func TestSaveReject(t *testing.T) {
	sys, _ := newStore(t, storage.Reject)
	ctx := context.Background()

	if _, err := sys.Save(ctx, "recording_a.wav", strings.NewReader("original")); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}

	_, err := sys.Save(ctx, "recording_a.wav", strings.NewReader("replacement"))
	if !errors.Is(err, storage.ErrExists) {
		t.Fatalf("second Save() error = %v, want ErrExists", err)
	}
}

func TestSaveUniquify(t *testing.T) {
	sys, root := newStore(t, storage.Uniquify)
	ctx := context.Background()

	want := []string{"recording_a.wav", "recording_a_1.wav", "recording_a_2.wav"}
	for i, name := range want {
		obj, err := sys.Save(ctx, "recording_a.wav", strings.NewReader("x"))
		if err != nil {
			t.Fatalf("Save() #%d error = %v", i, err)
		}
		if obj.Name != name {
			t.Errorf("Save() #%d name = %q, want %q", i, obj.Name, name)
		}
	}

	if got := entries(t, root); len(got) != 3 {
		t.Errorf("files = %v, want 3", got)
	}
}

func TestSaveInvalidKeys(t *testing.T) {
	sys, _ := newStore(t, storage.Overwrite)

	tests := []struct {
		name string
		key  string
		want error
	}{
		{"empty", "", storage.ErrEmptyKey},
		{"traversal", "../escape.wav", storage.ErrInvalidKey},
		{"separator", "nested/file.wav", storage.ErrInvalidKey},
		{"backslash", `..\escape.wav`, storage.ErrInvalidKey},
		{"parent", "..", storage.ErrInvalidKey},
		{"current", ".", storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sys.Save(context.Background(), tt.key, strings.NewReader("x"))
			if !errors.Is(err, tt.want) {
				t.Errorf("Save(%q) error = %v, want %v", tt.key, err, tt.want)
			}
		})
	}
}

func TestSaveDottedName(t *testing.T) {
	sys, root := newStore(t, storage.Overwrite)

	obj, err := sys.Save(context.Background(), "recording_2024-05-01_10-00-00..wav", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if obj.Path != filepath.Join(root, "recording_2024-05-01_10-00-00..wav") {
		t.Errorf("path = %q, want inside root", obj.Path)
	}
}

func TestRemove(t *testing.T) {
	sys, root := newStore(t, storage.Overwrite)
	ctx := context.Background()

	if _, err := sys.Save(ctx, "recording_a.wav", strings.NewReader("x")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := sys.Remove(ctx, "recording_a.wav"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if got := entries(t, root); len(got) != 0 {
		t.Errorf("files = %v, want none", got)
	}
	if err := sys.Remove(ctx, "recording_a.wav"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Remove() error = %v, want ErrNotFound", err)
	}
}

func TestOpen(t *testing.T) {
	sys, _ := newStore(t, storage.Overwrite)
	ctx := context.Background()

	if _, err := sys.Save(ctx, "recording_a.wav", strings.NewReader("riff-data")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rc, obj, err := sys.Open(ctx, "recording_a.wav")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "riff-data" {
		t.Errorf("content = %q", data)
	}
	if obj.SizeBytes != int64(len("riff-data")) {
		t.Errorf("size = %d", obj.SizeBytes)
	}
	if obj.ModTime.IsZero() {
		t.Error("mod time not set")
	}

	if _, _, err := sys.Open(ctx, "missing.wav"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Open(missing) error = %v, want ErrNotFound", err)
	}
	if _, _, err := sys.Open(ctx, "../etc/passwd"); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("Open(traversal) error = %v, want ErrInvalidKey", err)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := &storage.Config{CollisionPolicy: "append"}
	if err := cfg.Finalize(nil); err == nil {
		t.Fatal("expected error for unknown collision policy")
	}

	cfg = &storage.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize defaults: %v", err)
	}
	if cfg.Root != "new_received_audio" {
		t.Errorf("root = %q, want new_received_audio", cfg.Root)
	}
	if cfg.Policy() != storage.Overwrite {
		t.Errorf("policy = %q, want overwrite", cfg.Policy())
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{storage.ErrExists, http.StatusConflict},
		{storage.ErrEmptyKey, http.StatusBadRequest},
		{storage.ErrInvalidKey, http.StatusBadRequest},
		{errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := storage.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
