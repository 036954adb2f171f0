// Package schema validates inbound transcript events before they reach the
// post-processing pipeline.
package schema

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/wanghonghua666/AI-CALENDAR/internal/models"
)

// ErrInvalidEvent wraps every validation failure.
var ErrInvalidEvent = errors.New("invalid transcript event")

// Validator checks TranscriptFinal events.
type Validator struct{}

// New creates a new validator.
func New() *Validator {
	return &Validator{}
}

// Validate rejects events the pipeline cannot attribute. An out-of-range
// confidence is logged and left to the pipeline, which clamps its output.
func (v *Validator) Validate(event *models.TranscriptFinal) error {
	if event == nil {
		return fmt.Errorf("%w: nil event", ErrInvalidEvent)
	}
	if event.EventType != models.EventTypeTranscriptFinal {
		return fmt.Errorf("%w: unexpected eventType %q", ErrInvalidEvent, event.EventType)
	}
	if event.InteractionID == "" {
		return fmt.Errorf("%w: interactionId is required", ErrInvalidEvent)
	}
	if event.Confidence < 0 || event.Confidence > 1 {
		log.Warn().
			Str("interactionId", event.InteractionID).
			Str("segmentId", event.SegmentID).
			Float64("confidence", event.Confidence).
			Msg("Transcript confidence outside [0,1]")
	}
	return nil
}
