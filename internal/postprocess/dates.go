package postprocess

import (
	"strings"
	"time"
)

const (
	dateConfidence = 0.95
	dateLayout     = "2006-01-02"
)

// resolveDates records every relative date keyword in text together with the
// absolute date it refers to. The text itself is returned unchanged; the
// extractor resolves the event date on its own.
func (p *Processor) resolveDates(text string, ref time.Time) (string, []Correction) {
	var corrections []Correction
	for _, d := range p.tables.RelativeDates {
		if !strings.Contains(text, d.Word) {
			continue
		}
		corrections = append(corrections, Correction{
			Original:   d.Word,
			Corrected:  addDays(ref, d.Offset),
			Type:       CorrectionDate,
			Confidence: dateConfidence,
		})
	}
	return text, corrections
}

// addDays formats ref + days as YYYY-MM-DD in ref's location.
func addDays(ref time.Time, days int) string {
	y, m, d := ref.Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, ref.Location()).Format(dateLayout)
}
