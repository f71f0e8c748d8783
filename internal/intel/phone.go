package intel

import (
	"regexp"
	"strings"
	"time"
)

// phoneCandidateRE finds digit sequences that may be Indian mobile numbers,
// optionally prefixed by +91 / 91 or a trunk zero, with one optional
// separator between the two halves.
var phoneCandidateRE = regexp.MustCompile(`(?:\+?\b91[\s-]?|\b0|\b)[6-9]\d{4}[\s-]?\d{5}\b`)

// NormalizePhone strips formatting and the country/trunk prefix from raw.
// It returns the 10-digit number and true when the result is a valid mobile
// number (leading digit 6-9). Normalising an already normalised number
// returns it unchanged.
func NormalizePhone(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		digits = digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return "", false
	}
	if digits[0] < '6' || digits[0] > '9' {
		return "", false
	}
	return digits, true
}

// IsPhoneNumber reports whether a bare digit run qualifies as a mobile number
// under the phone rule, prefixed forms included.
func IsPhoneNumber(digits string) bool {
	_, ok := NormalizePhone(digits)
	return ok
}

func extractPhones(text string) []string {
	var out []string
	for _, match := range phoneCandidateRE.FindAllString(text, -1) {
		if normalized, ok := NormalizePhone(match); ok {
			out = append(out, normalized)
		}
	}
	return union(out, nil)
}

// accountCandidateRE matches bare digit runs; length bounds are applied after
// matching so the minimum stays configurable.
var accountCandidateRE = regexp.MustCompile(`\b\d{8,18}\b`)

type accountFilter func(run string) bool

// accountFilters run in order. The phone filter must see a run before the
// date filter does.
var accountFilters = []accountFilter{
	IsPhoneNumber,
	func(run string) bool { return len(run) == 8 && isCalendarDate(run) },
}

func extractAccounts(text string, minDigits int) []string {
	var out []string
	for _, run := range accountCandidateRE.FindAllString(text, -1) {
		if len(run) < minDigits || len(run) > 18 {
			continue
		}
		dropped := false
		for _, filter := range accountFilters {
			if filter(run) {
				dropped = true
				break
			}
		}
		if !dropped {
			out = append(out, run)
		}
	}
	return union(out, nil)
}

// isCalendarDate reports whether an 8-digit run reads as DDMMYYYY or YYYYMMDD
// with a plausible year.
func isCalendarDate(run string) bool {
	if len(run) != 8 {
		return false
	}
	for _, layout := range []string{"02012006", "20060102"} {
		if t, err := time.Parse(layout, run); err == nil && t.Year() >= 1900 && t.Year() <= 2099 {
			return true
		}
	}
	return false
}
