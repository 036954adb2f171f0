package postprocess

import (
	"fmt"
	"time"
)

// Option configures a [Processor].
type Option func(*Processor)

// WithTables replaces the default zh-CN tables.
func WithTables(t *Tables) Option {
	return func(p *Processor) {
		p.tables = t
	}
}

// WithScoring replaces the default scoring constants.
func WithScoring(s Scoring) Option {
	return func(p *Processor) {
		p.scoring = s
	}
}

// WithClock sets the clock used when Process is called with a zero
// reference date. Default: time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// WithLocation sets the time zone relative dates are resolved in. Default:
// the reference date's own location.
func WithLocation(loc *time.Location) Option {
	return func(p *Processor) {
		p.location = loc
	}
}

// Processor runs the post-processing pipeline. It is immutable after New
// and safe for concurrent use.
type Processor struct {
	tables   *Tables
	scoring  Scoring
	now      func() time.Time
	location *time.Location

	normalizer *normalizer
	temporal   *temporal
	extractor  *extractor
}

// New builds a Processor. The tables are validated once here; an invalid
// table set is a construction error, never a per-call one.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		tables:  DefaultTables(),
		scoring: DefaultScoring(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	if p.tables == nil {
		return nil, fmt.Errorf("postprocess: nil tables")
	}
	if err := p.tables.Validate(); err != nil {
		return nil, fmt.Errorf("postprocess: invalid %s tables: %w", p.tables.Locale, err)
	}

	p.normalizer = newNormalizer(p.tables)
	p.temporal = newTemporal(p.tables)
	p.extractor = newExtractor(p.tables, p.scoring)
	return p, nil
}

// Locale returns the locale of the tables in use.
func (p *Processor) Locale() string {
	return p.tables.Locale
}

// Location returns the time zone relative dates are resolved in.
func (p *Processor) Location() *time.Location {
	if p.location != nil {
		return p.location
	}
	return time.Local
}

// Process runs the full pipeline over transcript. confidence is the
// recognizer's score and is not validated; the returned score is clamped.
// A zero ref means "now" according to the processor's clock.
func (p *Processor) Process(transcript string, confidence float64, ref time.Time) *Result {
	if ref.IsZero() {
		ref = p.now()
	}
	if p.location != nil {
		ref = ref.In(p.location)
	}

	corrections := []Correction{}
	text := p.normalizer.apply(transcript)

	stages := []func(string) (string, []Correction){
		p.correctLexicon,
		p.correctNumerals,
		p.temporal.apply,
		func(s string) (string, []Correction) { return p.resolveDates(s, ref) },
	}
	for _, stage := range stages {
		var cs []Correction
		text, cs = stage(text)
		corrections = append(corrections, cs...)
	}

	event := p.extractor.extract(text, ref)

	return &Result{
		OriginalText:  transcript,
		CorrectedText: text,
		Confidence:    p.scoring.Recalculate(confidence, corrections, event),
		Corrections:   corrections,
		EventInfo:     event,
	}
}
