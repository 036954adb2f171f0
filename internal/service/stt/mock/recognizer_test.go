package mock

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/wanghonghua666/AI-CALENDAR/internal/service/stt"
)

var _ stt.Recognizer = (*Recognizer)(nil)

func TestRecognizer_CyclesThroughUtterances(t *testing.T) {
	r := New()
	audio := []byte{1, 2, 3, 4}

	for i := 0; i < len(DefaultUtterances)+1; i++ {
		got, err := r.Recognize(context.Background(), audio)
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		want := DefaultUtterances[i%len(DefaultUtterances)]
		if got != want {
			t.Errorf("call %d: expected %+v, got %+v", i, want, got)
		}
	}
}

func TestRecognizer_CustomScript(t *testing.T) {
	r := New(stt.Transcript{Text: "明天3点开会", Confidence: 0.8})

	got, err := r.Recognize(context.Background(), []byte{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "明天3点开会" || got.Confidence != 0.8 {
		t.Errorf("unexpected transcript: %+v", got)
	}
}

func TestRecognizer_EmptyAudio(t *testing.T) {
	r := New()

	_, err := r.Recognize(context.Background(), nil)
	if !errors.Is(err, stt.ErrNoSpeech) {
		t.Errorf("expected ErrNoSpeech, got %v", err)
	}
	if r.Calls() != 1 {
		t.Errorf("expected 1 call, got %d", r.Calls())
	}
}

func TestRecognizer_CancelledContext(t *testing.T) {
	r := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Recognize(ctx, []byte{1}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRecognizer_ThreadSafety(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Recognize(context.Background(), []byte{1})
		}()
	}
	wg.Wait()

	if r.Calls() != 10 {
		t.Errorf("expected 10 calls, got %d", r.Calls())
	}
}

func TestRecognizer_Close_Idempotent(t *testing.T) {
	r := New()
	if err := r.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("unexpected error on second close: %v", err)
	}
}
