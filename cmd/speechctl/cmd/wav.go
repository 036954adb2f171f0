package cmd

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// WAV header is 44 bytes for standard PCM files
const wavHeaderSize = 44

// wavInfo describes a PCM WAV recording.
type wavInfo struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
}

// readWAV validates the header and returns the raw LINEAR16 samples.
func readWAV(r io.Reader) (wavInfo, []byte, error) {
	header := make([]byte, wavHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return wavInfo{}, nil, fmt.Errorf("read WAV header: %w", err)
	}

	// Validate it's a WAV file
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return wavInfo{}, nil, errors.New("not a valid WAV file")
	}

	info := wavInfo{
		AudioFormat:   binary.LittleEndian.Uint16(header[20:22]),
		Channels:      binary.LittleEndian.Uint16(header[22:24]),
		SampleRate:    binary.LittleEndian.Uint32(header[24:28]),
		BitsPerSample: binary.LittleEndian.Uint16(header[34:36]),
	}
	if info.AudioFormat != 1 { // PCM
		return info, nil, fmt.Errorf("only PCM format supported, got format %d", info.AudioFormat)
	}
	if info.BitsPerSample != 16 || info.Channels != 1 {
		return info, nil, fmt.Errorf("want 16-bit mono, got %d-bit with %d channels", info.BitsPerSample, info.Channels)
	}

	pcm, err := io.ReadAll(r)
	if err != nil {
		return info, nil, fmt.Errorf("read audio: %w", err)
	}
	return info, pcm, nil
}
