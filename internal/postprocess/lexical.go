package postprocess

import "strings"

const (
	lexicalConfidence = 0.9
	numeralConfidence = 0.95
)

// substitute applies rules in order, replacing every occurrence of each
// matching source. One correction is recorded per rule that fired; typeOf
// decides the correction type from the rule's source.
func substitute(text string, rules []Rule, confidence float64, typeOf func(string) CorrectionType) (string, []Correction) {
	var corrections []Correction
	for _, r := range rules {
		if !strings.Contains(text, r.From) {
			continue
		}
		text = strings.ReplaceAll(text, r.From, r.To)
		corrections = append(corrections, Correction{
			Original:   r.From,
			Corrected:  r.To,
			Type:       typeOf(r.From),
			Confidence: confidence,
		})
	}
	return text, corrections
}

func (p *Processor) correctLexicon(text string) (string, []Correction) {
	return substitute(text, p.tables.Lexicon, lexicalConfidence, p.tables.classify)
}

func (p *Processor) correctNumerals(text string) (string, []Correction) {
	return substitute(text, p.tables.Numerals, numeralConfidence, func(string) CorrectionType {
		return CorrectionNumber
	})
}
