// Package audio inspects recorded audio files without decoding their samples.
package audio

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// ErrInvalidWAV indicates the file does not carry a readable RIFF/WAVE header.
var ErrInvalidWAV = errors.New("invalid WAV file format")

// Info summarizes a WAV header.
type Info struct {
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	BitDepth   int           `json:"bit_depth"`
	Duration   time.Duration `json:"duration"`
}

// InspectWAV reads the header of the WAV file at path.
func InspectWAV(path string) (Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()

	if !decoder.IsValidFile() {
		return Info{}, ErrInvalidWAV
	}

	if err := decoder.FwdToPCM(); err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrInvalidWAV, err)
	}

	info := Info{
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		BitDepth:   int(decoder.BitDepth),
	}

	// the RIFF size includes header chunks, so duration comes from the data chunk alone
	bytesPerSecond := int64(info.SampleRate) * int64(info.Channels) * int64(info.BitDepth/8)
	if bytesPerSecond > 0 {
		info.Duration = time.Duration(decoder.PCMLen() * int64(time.Second) / bytesPerSecond)
	}

	return info, nil
}
