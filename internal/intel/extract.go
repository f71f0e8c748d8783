// Package intel extracts fraud-actionable identifiers from free text and
// scores how strongly the text resembles a scam message. Everything here is
// pure and deterministic.
package intel

import "sort"

// Score weights. The composite score is clamped to MaxScore.
const (
	WeightUPI            = 30
	WeightPhone          = 15
	WeightSuspiciousLink = 40
	WeightBankAccount    = 25
	WeightPerKeyword     = 5
	KeywordScoreCap      = 30
	MultiCategoryBonus   = 10
	MaxScore             = 100
)

// DefaultAccountMinDigits is the shortest digit run treated as a bank account.
const DefaultAccountMinDigits = 9

// Options tunes an Extractor.
type Options struct {
	// AccountMinDigits lowers or raises the shortest accepted account run.
	// Values below 8 are raised to 8.
	AccountMinDigits int
}

// Extractor turns text into intelligence. The zero value is not usable; use
// New or the package-level helpers.
type Extractor struct {
	accountMinDigits int
}

// New returns an Extractor with the given options.
func New(opts Options) *Extractor {
	minDigits := opts.AccountMinDigits
	if minDigits == 0 {
		minDigits = DefaultAccountMinDigits
	}
	if minDigits < 8 {
		minDigits = 8
	}
	return &Extractor{accountMinDigits: minDigits}
}

var defaultExtractor = New(Options{})

// Findings is the full result of analysing one text: the surfaced record plus
// the detail the detector needs.
type Findings struct {
	Record     Record
	Links      []Link
	Keywords   map[Category][]string
	Score      int
	Categories []Category
}

// KeywordCategoryCount returns how many distinct keyword categories fired.
func (f Findings) KeywordCategoryCount() int {
	return len(f.Categories)
}

// HasCategory reports whether any keyword from cat matched.
func (f Findings) HasCategory(cat Category) bool {
	return len(f.Keywords[cat]) > 0
}

// Analyze runs every extraction rule over text.
func (e *Extractor) Analyze(text string) Findings {
	links := extractLinks(text)
	suspicious := make([]string, 0, len(links))
	for _, l := range links {
		if l.Suspicious() {
			suspicious = append(suspicious, l.URL)
		}
	}

	keywords := matchKeywords(text)
	categories := make([]Category, 0, len(keywords))
	for _, cat := range Categories {
		if len(keywords[cat]) > 0 {
			categories = append(categories, cat)
		}
	}

	record := NewRecord().Merge(Record{
		BankAccounts:       extractAccounts(text, e.accountMinDigits),
		UPIIDs:             extractUPIIDs(text),
		PhishingLinks:      suspicious,
		PhoneNumbers:       extractPhones(text),
		SuspiciousKeywords: flattenKeywords(keywords),
	})

	findings := Findings{
		Record:     record,
		Links:      links,
		Keywords:   keywords,
		Categories: categories,
	}
	findings.Score = score(findings)
	return findings
}

// Extract returns only the intelligence record for text.
func (e *Extractor) Extract(text string) Record {
	return e.Analyze(text).Record
}

// ScamScore returns the bounded 0-100 composite score for text.
func (e *Extractor) ScamScore(text string) int {
	return e.Analyze(text).Score
}

// Extract runs the default extractor.
func Extract(text string) Record {
	return defaultExtractor.Extract(text)
}

// Analyze runs the default extractor and returns full findings.
func Analyze(text string) Findings {
	return defaultExtractor.Analyze(text)
}

// ScamScore runs the default extractor and returns the composite score.
func ScamScore(text string) int {
	return defaultExtractor.ScamScore(text)
}

func score(f Findings) int {
	total := 0
	if len(f.Record.UPIIDs) > 0 {
		total += WeightUPI
	}
	if len(f.Record.PhoneNumbers) > 0 {
		total += WeightPhone
	}
	if len(f.Record.PhishingLinks) > 0 {
		total += WeightSuspiciousLink
	}
	if len(f.Record.BankAccounts) > 0 {
		total += WeightBankAccount
	}
	kw := len(f.Record.SuspiciousKeywords) * WeightPerKeyword
	if kw > KeywordScoreCap {
		kw = KeywordScoreCap
	}
	total += kw
	if len(f.Categories) >= 2 {
		total += MultiCategoryBonus
	}
	if total > MaxScore {
		total = MaxScore
	}
	return total
}

// SortedCategories returns the category names of f in fixed order.
func (f Findings) SortedCategories() []string {
	out := make([]string, 0, len(f.Categories))
	for _, c := range f.Categories {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}
