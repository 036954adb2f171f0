package postprocess

import (
	"fmt"
	"regexp"
	"strconv"
)

const (
	clockConfidence  = 0.9
	hourConfidence   = 0.85
	periodConfidence = 0.9
)

var (
	canonicalTimeRe = regexp.MustCompile(`^(?:[01]\d|2[0-3]):[0-5]\d$`)
	timeTokenRe     = regexp.MustCompile(`\b(?:[01]\d|2[0-3]):[0-5]\d\b`)
)

func isCanonicalTime(s string) bool {
	return canonicalTimeRe.MatchString(s)
}

// temporal rewrites clock expressions into canonical HH:MM.
type temporal struct {
	clockRe  *regexp.Regexp // H<sep>M[suffix]
	hourRe   *regexp.Regexp // H<sep> with whatever digits follow
	periodRe *regexp.Regexp // <period> HH:MM
	periods  map[string]PeriodKind
}

func newTemporal(t *Tables) *temporal {
	seps := charClass(t.ClockSeparators)
	suffix := ""
	if t.MinuteSuffix != "" {
		suffix = `(?:` + regexp.QuoteMeta(t.MinuteSuffix) + `)?`
	}

	tp := &temporal{
		clockRe: regexp.MustCompile(`(\d+)` + seps + `(\d+)` + suffix),
		hourRe:  regexp.MustCompile(`(\d+)` + seps + `(\d*)`),
		periods: make(map[string]PeriodKind, len(t.Periods)),
	}

	if len(t.Periods) > 0 {
		words := make([]string, 0, len(t.Periods))
		for _, p := range t.Periods {
			words = append(words, p.Word)
			tp.periods[p.Word] = p.Kind
		}
		tp.periodRe = regexp.MustCompile(`(` + alternation(words) + `)\s*(\d{1,2}):(\d{2})`)
	}
	return tp
}

// apply runs the three passes in order: hour+minute, hour only, then period
// qualifiers. Out-of-range values are left untouched.
func (tp *temporal) apply(text string) (string, []Correction) {
	var corrections []Correction

	text = replaceSubmatches(tp.clockRe, text, func(g []string) (string, bool) {
		h, m, ok := parseClock(g[1], g[2])
		if !ok {
			return "", false
		}
		canonical := formatClock(h, m)
		if canonical != g[0] {
			corrections = append(corrections, Correction{
				Original:   g[0],
				Corrected:  canonical,
				Type:       CorrectionTime,
				Confidence: clockConfidence,
			})
		}
		return canonical, true
	})

	text = replaceSubmatches(tp.hourRe, text, func(g []string) (string, bool) {
		if g[2] != "" {
			// minutes present: already canonical or rejected by the first pass
			return "", false
		}
		h, _, ok := parseClock(g[1], "0")
		if !ok {
			return "", false
		}
		canonical := formatClock(h, 0)
		if canonical != g[0] {
			corrections = append(corrections, Correction{
				Original:   g[0],
				Corrected:  canonical,
				Type:       CorrectionTime,
				Confidence: hourConfidence,
			})
		}
		return canonical, true
	})

	if tp.periodRe == nil {
		return text, corrections
	}

	text = replaceSubmatches(tp.periodRe, text, func(g []string) (string, bool) {
		h, m, ok := parseClock(g[2], g[3])
		if !ok {
			return "", false
		}
		switch tp.periods[g[1]] {
		case PeriodPM:
			if h < 12 {
				h += 12
			}
		case PeriodAM:
			if h == 12 {
				h = 0
			}
		case PeriodNoon:
			if h < 12 {
				h = 12
			}
		}
		canonical := formatClock(h, m)
		// the qualifier is consumed, so this is recorded even when the
		// numeric value did not change
		corrections = append(corrections, Correction{
			Original:   g[0],
			Corrected:  canonical,
			Type:       CorrectionTime,
			Confidence: periodConfidence,
		})
		return canonical, true
	})

	return text, corrections
}

// parseClock validates hour and minute digit runs.
func parseClock(hour, minute string) (int, int, bool) {
	if len(hour) == 0 || len(hour) > 2 || len(minute) == 0 || len(minute) > 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(hour)
	if err != nil || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(minute)
	if err != nil || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

func formatClock(h, m int) string {
	return fmt.Sprintf("%02d:%02d", h, m)
}
