// Package stt defines the interface for server-side Speech-to-Text
// recognizers.
package stt

import (
	"context"
	"errors"
)

// ErrNoSpeech is returned when the audio held no recognizable speech.
var ErrNoSpeech = errors.New("no speech recognized")

// Transcript is the best hypothesis for one recorded utterance.
type Transcript struct {
	Text       string
	Confidence float64
}

// Recognizer defines the interface for STT providers (Google, mock, etc.).
type Recognizer interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Recognize transcribes a complete recording.
	Recognize(ctx context.Context, audio []byte) (Transcript, error)

	// Close releases provider resources.
	Close() error
}
