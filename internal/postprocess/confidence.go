package postprocess

// Scoring holds the tunable constants of the extractor confidence and the
// final confidence recalculation. They are heuristics, not probabilities.
type Scoring struct {
	// PenaltyPerCorrection is subtracted per correction, up to MaxPenalty.
	PenaltyPerCorrection float64
	MaxPenalty           float64

	// EventBonus is added when an event was extracted with confidence above
	// EventBonusThreshold.
	EventBonus          float64
	EventBonusThreshold float64

	// HighConfidenceBonus is added per correction whose own confidence is
	// above HighConfidenceThreshold.
	HighConfidenceBonus     float64
	HighConfidenceThreshold float64

	Floor   float64
	Ceiling float64

	// ExtractBase is the extractor's starting confidence and
	// ExtractCategoryBonus is added when a category keyword matched.
	ExtractBase          float64
	ExtractCategoryBonus float64
}

// DefaultScoring returns the stock constants.
func DefaultScoring() Scoring {
	return Scoring{
		PenaltyPerCorrection:    0.05,
		MaxPenalty:              0.3,
		EventBonus:              0.2,
		EventBonusThreshold:     0.7,
		HighConfidenceBonus:     0.05,
		HighConfidenceThreshold: 0.9,
		Floor:                   0.1,
		Ceiling:                 1.0,
		ExtractBase:             0.5,
		ExtractCategoryBonus:    0.2,
	}
}

// Recalculate combines the recognizer confidence with the corrections and
// the extracted event. The result is clamped to [Floor, Ceiling] whatever
// the input.
func (s Scoring) Recalculate(original float64, corrections []Correction, event *EventInfo) float64 {
	score := original

	score -= min(float64(len(corrections))*s.PenaltyPerCorrection, s.MaxPenalty)

	if event != nil && event.Confidence > s.EventBonusThreshold {
		score += s.EventBonus
	}

	for _, c := range corrections {
		if c.Confidence > s.HighConfidenceThreshold {
			score += s.HighConfidenceBonus
		}
	}

	return max(s.Floor, min(s.Ceiling, score))
}
