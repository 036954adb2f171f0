package postprocess

import "testing"

func corrections(n int, confidence float64) []Correction {
	cs := make([]Correction, n)
	for i := range cs {
		cs[i] = Correction{Original: "x", Corrected: "y", Type: CorrectionCommonWord, Confidence: confidence}
	}
	return cs
}

func TestScoring_Recalculate(t *testing.T) {
	s := DefaultScoring()

	tests := []struct {
		name        string
		original    float64
		corrections []Correction
		event       *EventInfo
		want        float64
	}{
		{"no corrections", 0.8, nil, nil, 0.8},
		{"penalty per correction", 0.8, corrections(2, 0.9), nil, 0.7},
		{"penalty capped", 0.9, corrections(10, 0.9), nil, 0.6},
		{"high confidence bonus", 0.5, corrections(2, 0.95), nil, 0.5},
		{"event bonus", 0.5, nil, &EventInfo{Confidence: 0.9}, 0.7},
		{"event at threshold gets no bonus", 0.5, nil, &EventInfo{Confidence: 0.7}, 0.5},
		{"floor", -3, corrections(3, 0.5), nil, 0.1},
		{"ceiling", 5, nil, &EventInfo{Confidence: 1}, 1.0},
		{"ceiling after bonuses", 0.95, corrections(6, 0.95), &EventInfo{Confidence: 0.9}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Recalculate(tt.original, tt.corrections, tt.event)
			if !approxEqual(got, tt.want) {
				t.Errorf("Recalculate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoring_MonotonicInCorrections(t *testing.T) {
	s := DefaultScoring()

	prev := s.Recalculate(0.8, nil, nil)
	for n := 1; n <= 8; n++ {
		got := s.Recalculate(0.8, corrections(n, 0.5), nil)
		if got > prev {
			t.Errorf("confidence rose from %v to %v at %d low-confidence corrections", prev, got, n)
		}
		prev = got
	}
}
