package responder

import (
	"regexp"
	"strings"
	"unicode"
)

// Humanizer loosens generated text into an informal texting register. Each
// transformation fires independently with its own probability, so the same
// input does not always produce the same output unless the source is seeded.
type Humanizer struct {
	rng *Rand
}

func NewHumanizer(rng *Rand) *Humanizer {
	return &Humanizer{rng: rng}
}

type substitution struct {
	re   *regexp.Regexp
	with string
}

func sub(word, with string) substitution {
	return substitution{re: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`), with: with}
}

var fullSubstitutions = []substitution{
	sub("you", "u"),
	sub("your", "ur"),
	sub("are", "r"),
	sub("please", "pls"),
	sub("okay", "ok"),
	sub("because", "coz"),
	sub("thanks", "thx"),
	sub("what", "wat"),
	sub("tomorrow", "tmrw"),
	sub("message", "msg"),
}

// minimalSubstitutions are safe inside transliterated or non-Latin text.
var minimalSubstitutions = []substitution{
	sub("okay", "ok"),
	sub("please", "pls"),
}

const (
	substitutionChance = 0.35
	lowercaseChance    = 0.3
	dropPunctChance    = 0.25
	emphasisChance     = 0.15
	typoChance         = 0.1
	typoMinLength      = 40
)

var hinglishMarkers = map[string]struct{}{
	"hai": {}, "hain": {}, "kya": {}, "nahi": {}, "nahin": {}, "mera": {}, "meri": {},
	"aap": {}, "aapka": {}, "bhai": {}, "ji": {}, "karo": {}, "kaise": {}, "paisa": {},
	"kar": {}, "ho": {}, "main": {}, "kyun": {}, "accha": {}, "theek": {},
}

// isNonLatinRegister reports whether text is mostly non-Latin script or
// reads as transliterated Hindi.
func isNonLatinRegister(text string) bool {
	var letters, nonLatin int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if !unicode.Is(unicode.Latin, r) {
			nonLatin++
		}
	}
	if letters > 0 && float64(nonLatin)/float64(letters) > 0.3 {
		return true
	}
	markers := 0
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool { return !unicode.IsLetter(r) }) {
		if _, ok := hinglishMarkers[w]; ok {
			markers++
		}
	}
	return markers >= 2
}

// Humanize applies the informal transformations to text.
func (h *Humanizer) Humanize(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || h == nil || h.rng == nil {
		return text
	}
	if isNonLatinRegister(text) {
		return h.substitute(text, minimalSubstitutions)
	}

	text = h.substitute(text, fullSubstitutions)
	if h.rng.Chance(lowercaseChance) {
		text = lowerFirst(text)
	}
	switch {
	case h.rng.Chance(dropPunctChance):
		if trimmed := strings.TrimRight(text, "."); trimmed != "" {
			text = trimmed
		}
	case h.rng.Chance(emphasisChance):
		if last := text[len(text)-1]; last == '?' || last == '!' {
			text += string(last)
		}
	}
	if len(text) >= typoMinLength && h.rng.Chance(typoChance) {
		text = h.swapAdjacent(text)
	}
	return text
}

func (h *Humanizer) substitute(text string, subs []substitution) string {
	for _, s := range subs {
		text = s.re.ReplaceAllStringFunc(text, func(m string) string {
			if h.rng.Chance(substitutionChance) {
				return s.with
			}
			return m
		})
	}
	return text
}

func lowerFirst(text string) string {
	runes := []rune(text)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// swapAdjacent transposes two neighbouring lowercase ASCII letters once.
func (h *Humanizer) swapAdjacent(text string) string {
	b := []byte(text)
	var spots []int
	for i := 1; i < len(b)-2; i++ {
		if isLowerASCII(b[i]) && isLowerASCII(b[i+1]) && b[i] != b[i+1] {
			spots = append(spots, i)
		}
	}
	if len(spots) == 0 {
		return text
	}
	i := spots[h.rng.IntN(len(spots))]
	b[i], b[i+1] = b[i+1], b[i]
	return string(b)
}

func isLowerASCII(c byte) bool {
	return c >= 'a' && c <= 'z'
}
