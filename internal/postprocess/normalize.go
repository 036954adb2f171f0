package postprocess

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// normalizer strips whitespace and punctuation noise. Its rewrites are
// hygiene and are never recorded as corrections.
type normalizer struct {
	punctRe *regexp.Regexp
	unitRe  *regexp.Regexp
}

func newNormalizer(t *Tables) *normalizer {
	n := &normalizer{}
	if t.Punctuation != "" {
		n.punctRe = regexp.MustCompile(charClass(t.Punctuation))
	}
	if t.UnitParticles != "" {
		n.unitRe = regexp.MustCompile(`\s*(` + charClass(t.UnitParticles) + `)\s*`)
	}
	return n
}

func (n *normalizer) apply(text string) string {
	text = strings.TrimSpace(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	if n.punctRe != nil {
		text = n.punctRe.ReplaceAllString(text, "")
	}
	if n.unitRe != nil {
		text = n.unitRe.ReplaceAllString(text, "$1")
	}
	return text
}

// charClass builds a bracket expression matching any rune of chars.
func charClass(chars string) string {
	var b strings.Builder
	b.WriteByte('[')
	for _, r := range chars {
		if r < 0x80 && !isAlnum(r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte(']')
	return b.String()
}

func isAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// alternation builds a non-capturing group matching any of words, longest
// first so that no word is cut short by one of its prefixes.
func alternation(words []string) string {
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})
	for i, w := range sorted {
		sorted[i] = regexp.QuoteMeta(w)
	}
	return "(?:" + strings.Join(sorted, "|") + ")"
}

// replaceSubmatches rewrites every match of re in s with the result of fn.
// fn receives the full match followed by its submatches; when it returns
// false the match is kept verbatim.
func replaceSubmatches(re *regexp.Regexp, s string, fn func(groups []string) (string, bool)) string {
	idx := re.FindAllStringSubmatchIndex(s, -1)
	if len(idx) == 0 {
		return s
	}

	var b strings.Builder
	last := 0
	for _, loc := range idx {
		groups := make([]string, len(loc)/2)
		for g := range groups {
			if loc[2*g] >= 0 {
				groups[g] = s[loc[2*g]:loc[2*g+1]]
			}
		}
		b.WriteString(s[last:loc[0]])
		if repl, ok := fn(groups); ok {
			b.WriteString(repl)
		} else {
			b.WriteString(groups[0])
		}
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
