// Package models defines the data structures exchanged with other services.
package models

import "github.com/wanghonghua666/AI-CALENDAR/internal/postprocess"

// Event types carried in the eventType field.
const (
	EventTypeTranscriptFinal     = "interaction.transcript.final"
	EventTypeTranscriptProcessed = "calendar.speech.processed"
	EventTypeEventConfirmed      = "calendar.event.confirmed"
)

// TranscriptFinal is a final transcript as published by the speech ingress
// service.
type TranscriptFinal struct {
	EventType     string  `json:"eventType"`
	InteractionID string  `json:"interactionId"`
	TenantID      string  `json:"tenantId"`
	Timestamp     int64   `json:"timestamp"`
	SegmentID     string  `json:"segmentId"`
	Text          string  `json:"text"`
	Confidence    float64 `json:"confidence"`
	AudioOffsetMs int64   `json:"audioOffsetMs"`
}

// TranscriptProcessed is the post-processing outcome for one transcript.
// ProposalID is set when the result carries an event proposal awaiting
// confirmation.
type TranscriptProcessed struct {
	EventType     string              `json:"eventType"`
	InteractionID string              `json:"interactionId"`
	TenantID      string              `json:"tenantId"`
	SegmentID     string              `json:"segmentId,omitempty"`
	Timestamp     int64               `json:"timestamp"`
	Locale        string              `json:"locale"`
	ProposalID    string              `json:"proposalId,omitempty"`
	Result        *postprocess.Result `json:"result"`
}

// EventConfirmed is emitted when a user accepts an event proposal. It is
// the hand-off to the calendar event store.
type EventConfirmed struct {
	EventType     string                `json:"eventType"`
	ProposalID    string                `json:"proposalId"`
	InteractionID string                `json:"interactionId"`
	TenantID      string                `json:"tenantId"`
	Timestamp     int64                 `json:"timestamp"`
	Event         postprocess.EventInfo `json:"event"`
}
