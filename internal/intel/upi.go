package intel

import (
	"regexp"
	"strings"
)

// upiCandidateRE matches handle@provider. Whether the provider label is
// followed by a dotted extension (an e-mail domain) is checked after matching.
var upiCandidateRE = regexp.MustCompile(`[a-zA-Z0-9][a-zA-Z0-9._-]{1,255}@[a-zA-Z][a-zA-Z0-9]{1,63}`)

var emailLikeSuffixRE = regexp.MustCompile(`^\.[a-zA-Z]{2,}`)

// freeMailProviders are webmail domain labels; handles on them are e-mail
// addresses, never payment handles.
var freeMailProviders = map[string]struct{}{
	"gmail":      {},
	"googlemail": {},
	"yahoo":      {},
	"ymail":      {},
	"hotmail":    {},
	"outlook":    {},
	"live":       {},
	"msn":        {},
	"icloud":     {},
	"me":         {},
	"aol":        {},
	"protonmail": {},
	"proton":     {},
	"rediffmail": {},
	"zoho":       {},
	"mail":       {},
	"gmx":        {},
	"yandex":     {},
}

func extractUPIIDs(text string) []string {
	var out []string
	for _, loc := range upiCandidateRE.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && isHandleByte(text[start-1]) {
			continue
		}
		if end < len(text) && (isHandleByte(text[end]) || emailLikeSuffixRE.MatchString(text[end:])) {
			continue
		}
		candidate := text[start:end]
		at := strings.LastIndexByte(candidate, '@')
		provider := strings.ToLower(candidate[at+1:])
		if _, ok := freeMailProviders[provider]; ok {
			continue
		}
		out = append(out, strings.ToLower(candidate))
	}
	return union(out, nil)
}

func isHandleByte(b byte) bool {
	return b == '@' || b == '/' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
