// Package postprocess turns a raw speech-recognition transcript into a
// corrected transcript, an itemised list of corrections, a recalculated
// confidence score and, when the text carries enough temporal signal, a
// proposed calendar event.
//
// The pipeline is rule based and deterministic. Stages run strictly in order:
//
//  1. normalize   - whitespace and punctuation hygiene (not recorded)
//  2. lexical     - known mis-recognitions from [Tables.Lexicon]
//  3. numerals    - spelled-out numerals to digits from [Tables.Numerals]
//  4. temporal    - clock expressions to canonical HH:MM (24-hour)
//  5. dates       - relative date keywords resolved against a reference date
//  6. extract     - best-effort [EventInfo]
//  7. confidence  - final score from [Scoring]
//
// All localized data lives in [Tables]; the stage algorithms are script
// agnostic. A [Processor] is immutable after construction and safe for
// concurrent use.
package postprocess

// CorrectionType classifies why a rewrite happened.
type CorrectionType string

const (
	CorrectionTime       CorrectionType = "time"
	CorrectionDate       CorrectionType = "date"
	CorrectionNumber     CorrectionType = "number"
	CorrectionCommonWord CorrectionType = "common_word"
	CorrectionEventType  CorrectionType = "event_type"
)

// Valid reports whether t is one of the known correction types.
func (t CorrectionType) Valid() bool {
	switch t {
	case CorrectionTime, CorrectionDate, CorrectionNumber, CorrectionCommonWord, CorrectionEventType:
		return true
	}
	return false
}

// Correction is one atomic rewrite applied to the transcript.
type Correction struct {
	Original   string         `json:"original"`
	Corrected  string         `json:"corrected"`
	Type       CorrectionType `json:"type"`
	Confidence float64        `json:"confidence"`
}

// EventInfo is a best-effort event guess. It is a proposal and must be
// confirmed by a user before it becomes a calendar entry.
type EventInfo struct {
	Title       string  `json:"title"`
	Date        string  `json:"date"`      // YYYY-MM-DD
	StartTime   string  `json:"startTime"` // HH:MM, 24-hour
	EndTime     string  `json:"endTime"`   // HH:MM, 24-hour
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`

	// Category is the matched category key, empty when no keyword matched.
	Category string `json:"category,omitempty"`
	// Color is the calendar color tag for the category.
	Color string `json:"color,omitempty"`
}

// Result is the output of a single pipeline run.
type Result struct {
	OriginalText  string       `json:"originalText"`
	CorrectedText string       `json:"correctedText"`
	Confidence    float64      `json:"confidence"`
	Corrections   []Correction `json:"corrections"`
	EventInfo     *EventInfo   `json:"eventInfo,omitempty"`
}

// CorrectionsByType counts the corrections of each type.
func (r *Result) CorrectionsByType() map[CorrectionType]int {
	counts := make(map[CorrectionType]int)
	for _, c := range r.Corrections {
		counts[c.Type]++
	}
	return counts
}
