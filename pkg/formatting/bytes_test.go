package formatting_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/aviary/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1024", 1024},
		{"50MB", 50 << 20},
		{"50 mb", 50 << 20},
		{"1.5KB", 1536},
		{" 2GB ", 2 << 30},
		{"0B", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.in)
			if err != nil {
				t.Fatalf("ParseBytes(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseBytesInvalid(t *testing.T) {
	for _, in := range []string{"", "MB", "12XB", "-5MB", "1,000"} {
		if _, err := formatting.ParseBytes(in); !errors.Is(err, formatting.ErrInvalidSize) {
			t.Errorf("ParseBytes(%q) error = %v, want ErrInvalidSize", in, err)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n         int64
		precision int
		want      string
	}{
		{0, 1, "0 B"},
		{512, 0, "512 B"},
		{1536, 1, "1.5 KB"},
		{50 << 20, 0, "50 MB"},
		{1 << 30, -2, "1 GB"},
	}

	for _, tt := range tests {
		if got := formatting.FormatBytes(tt.n, tt.precision); got != tt.want {
			t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.n, tt.precision, got, tt.want)
		}
	}
}
