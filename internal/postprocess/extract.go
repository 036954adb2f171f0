package postprocess

import (
	"regexp"
	"strings"
	"time"
)

var isoDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// extractor assembles a best-guess event from fully corrected text.
type extractor struct {
	tables  *Tables
	scoring Scoring
	dateRe  *regexp.Regexp
}

func newExtractor(t *Tables, s Scoring) *extractor {
	e := &extractor{tables: t, scoring: s, dateRe: isoDateRe}
	if len(t.DateTriggers) > 0 {
		e.dateRe = regexp.MustCompile(alternation(t.DateTriggers) + `|\d{4}-\d{2}-\d{2}`)
	}
	return e
}

// extract returns nil unless text carries a time token or a date token;
// conversational text without schedulable content yields no event.
func (e *extractor) extract(text string, ref time.Time) *EventInfo {
	times := timeTokenRe.FindAllString(text, 2)
	hasDate := e.dateRe.MatchString(text)
	if len(times) == 0 && !hasDate {
		return nil
	}

	info := &EventInfo{
		Title: e.tables.DefaultTitle,
		Color: e.tables.DefaultColor,
	}
	confidence := e.scoring.ExtractBase

	if c, ok := e.category(text); ok {
		info.Title = c.Label
		info.Category = c.Key
		if c.Color != "" {
			info.Color = c.Color
		}
		confidence += e.scoring.ExtractCategoryBonus
	}

	info.StartTime = e.tables.DefaultStartTime
	if len(times) > 0 {
		info.StartTime = times[0]
	}
	if len(times) > 1 {
		info.EndTime = times[1]
	} else {
		// Events stay on Date: a 23:xx start ends at 23:59, not an hour later.
		info.EndTime = plusOneHour(info.StartTime)
	}

	info.Date = e.eventDate(text, ref)
	info.Description = strings.ReplaceAll(e.tables.DescriptionTemplate, "{text}", text)
	info.Confidence = min(confidence, 1.0)
	return info
}

// category returns the first category with a keyword present in text.
func (e *extractor) category(text string) (Category, bool) {
	for _, c := range e.tables.Categories {
		for _, kw := range c.Keywords {
			if strings.Contains(text, kw) {
				return c, true
			}
		}
	}
	return Category{}, false
}

// eventDate uses the extractor's own lookup, independent of the date
// resolver stage. No keyword means the reference date.
func (e *extractor) eventDate(text string, ref time.Time) string {
	for _, d := range e.tables.EventDates {
		if strings.Contains(text, d.Word) {
			return addDays(ref, d.Offset)
		}
	}
	return addDays(ref, 0)
}

// plusOneHour adds an hour to a canonical HH:MM, staying on the same day:
// 23:xx ends at 23:59.
func plusOneHour(start string) string {
	h, m, ok := parseClock(start[:2], start[3:])
	if !ok {
		return start
	}
	if h == 23 {
		return "23:59"
	}
	return formatClock(h+1, m)
}
