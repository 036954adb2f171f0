// Package google provides a Google Cloud Speech-to-Text recognizer.
package google

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"

	"github.com/wanghonghua666/AI-CALENDAR/internal/service/stt"
)

// Config holds recognition settings.
type Config struct {
	LanguageCode  string
	SampleRateHz  int32
	AudioEncoding string
	// Alternatives lists extra language codes to try, e.g. "en-US".
	Alternatives []string
}

// DefaultConfig returns the settings for Mandarin LINEAR16 at 16 kHz.
func DefaultConfig() Config {
	return Config{
		LanguageCode:  "zh-CN",
		SampleRateHz:  16000,
		AudioEncoding: "LINEAR16",
	}
}

// parseAudioEncoding maps an encoding name to the API enum. Unknown names
// fall back to LINEAR16.
func parseAudioEncoding(name string) speechpb.RecognitionConfig_AudioEncoding {
	if v, ok := speechpb.RecognitionConfig_AudioEncoding_value[name]; ok && v != 0 {
		return speechpb.RecognitionConfig_AudioEncoding(v)
	}
	return speechpb.RecognitionConfig_LINEAR16
}

// recognizeClient is the subset of *speech.Client the recognizer uses.
type recognizeClient interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
	Close() error
}

// Recognizer implements stt.Recognizer using synchronous recognition.
type Recognizer struct {
	client recognizeClient
	cfg    Config
}

// New creates a new Google recognizer.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
func New(ctx context.Context, cfg Config) (*Recognizer, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("google stt: create client: %w", err)
	}
	return &Recognizer{client: c, cfg: cfg}, nil
}

// Name returns "google".
func (r *Recognizer) Name() string {
	return "google"
}

func (r *Recognizer) request(audio []byte) *speechpb.RecognizeRequest {
	return &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   parseAudioEncoding(r.cfg.AudioEncoding),
			SampleRateHertz:            r.cfg.SampleRateHz,
			LanguageCode:               r.cfg.LanguageCode,
			AlternativeLanguageCodes:   r.cfg.Alternatives,
			EnableAutomaticPunctuation: false,
			MaxAlternatives:            1,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}
}

// Recognize transcribes audio. Results for consecutive stretches of speech
// are joined; the confidence is their mean.
func (r *Recognizer) Recognize(ctx context.Context, audio []byte) (stt.Transcript, error) {
	if len(audio) == 0 {
		return stt.Transcript{}, stt.ErrNoSpeech
	}

	resp, err := r.client.Recognize(ctx, r.request(audio))
	if err != nil {
		return stt.Transcript{}, fmt.Errorf("google stt: recognize: %w", err)
	}
	return bestTranscript(resp)
}

func bestTranscript(resp *speechpb.RecognizeResponse) (stt.Transcript, error) {
	var parts []string
	var sum float64
	for _, res := range resp.GetResults() {
		alts := res.GetAlternatives()
		if len(alts) == 0 || alts[0].GetTranscript() == "" {
			continue
		}
		parts = append(parts, alts[0].GetTranscript())
		sum += float64(alts[0].GetConfidence())
	}
	if len(parts) == 0 {
		return stt.Transcript{}, stt.ErrNoSpeech
	}
	return stt.Transcript{
		Text:       strings.Join(parts, " "),
		Confidence: sum / float64(len(parts)),
	}, nil
}

// Close closes the API client.
func (r *Recognizer) Close() error {
	return r.client.Close()
}
