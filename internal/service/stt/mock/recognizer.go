// Package mock provides a scripted recognizer for running without cloud
// credentials. Each call returns the next utterance of the script.
package mock

import (
	"context"
	"sync"

	"github.com/wanghonghua666/AI-CALENDAR/internal/service/stt"
)

// DefaultUtterances are calendar requests as a recognizer would return
// them, glitches included.
var DefaultUtterances = []stt.Transcript{
	{Text: "明天下午三点开会", Confidence: 0.92},
	{Text: "后天 上午 十点 看医生", Confidence: 0.88},
	{Text: "明明晚上七点吃饭", Confidence: 0.81},
	{Text: "下星期三下午两点半面试", Confidence: 0.86},
	{Text: "今天天气真好", Confidence: 0.95},
}

// Recognizer implements stt.Recognizer with scripted responses.
type Recognizer struct {
	mu         sync.Mutex
	utterances []stt.Transcript
	next       int
	calls      int
	closed     bool
}

// New creates a recognizer cycling through utterances, or through
// DefaultUtterances when none are given.
func New(utterances ...stt.Transcript) *Recognizer {
	if len(utterances) == 0 {
		utterances = DefaultUtterances
	}
	return &Recognizer{utterances: utterances}
}

// Name returns "mock".
func (r *Recognizer) Name() string {
	return "mock"
}

// Recognize returns the next scripted utterance. Empty audio yields
// stt.ErrNoSpeech, like a silent recording.
func (r *Recognizer) Recognize(ctx context.Context, audio []byte) (stt.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return stt.Transcript{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if len(audio) == 0 {
		return stt.Transcript{}, stt.ErrNoSpeech
	}

	t := r.utterances[r.next%len(r.utterances)]
	r.next++
	return t, nil
}

// Calls returns how many times Recognize was called.
func (r *Recognizer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Close marks the recognizer closed. Idempotent.
func (r *Recognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
