package audio_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/JaimeStill/aviary/pkg/audio"
)

func writeWAV(t *testing.T, path string, sampleRate, seconds int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Data:           make([]int, sampleRate*seconds),
		Format:         &goaudio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
}

func TestInspectWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeWAV(t, path, 48000, 2)

	info, err := audio.InspectWAV(path)
	if err != nil {
		t.Fatalf("InspectWAV() error = %v", err)
	}

	if info.SampleRate != 48000 {
		t.Errorf("sample rate = %d, want 48000", info.SampleRate)
	}
	if info.Channels != 1 {
		t.Errorf("channels = %d, want 1", info.Channels)
	}
	if info.BitDepth != 16 {
		t.Errorf("bit depth = %d, want 16", info.BitDepth)
	}
	if info.Duration != 2*time.Second {
		t.Errorf("duration = %v, want 2s", info.Duration)
	}
}

func TestInspectWAVRejectsNonWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.wav")
	if err := os.WriteFile(path, []byte("definitely not riff data"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := audio.InspectWAV(path); !errors.Is(err, audio.ErrInvalidWAV) {
		t.Errorf("InspectWAV() error = %v, want ErrInvalidWAV", err)
	}
}

func TestInspectWAVMissingFile(t *testing.T) {
	if _, err := audio.InspectWAV(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for missing file")
	}
}
