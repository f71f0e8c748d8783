package detection

import (
	"fmt"
	"strings"

	"github.com/wolfman30/honeypot-ai/internal/intel"
)

// patternVerdict is the synchronous first stage. It never blocks.
func patternVerdict(f intel.Findings) Result {
	confidence := clamp01(float64(f.Score) / float64(intel.MaxScore))
	isScam := confidence > ScamThreshold || f.KeywordCategoryCount() >= 2

	return Result{
		IsScam:     isScam,
		Confidence: confidence,
		ScamType:   patternScamType(f),
		Indicators: patternIndicators(f),
		Reasoning:  patternReasoning(f),
		Method:     MethodPattern,
	}
}

// patternScamType applies the fixed precedence: suspicious link, UPI handle,
// prize keywords, account-security keywords, then score.
func patternScamType(f intel.Findings) ScamType {
	switch {
	case len(f.Record.PhishingLinks) > 0:
		return ScamTypePhishing
	case len(f.Record.UPIIDs) > 0:
		return ScamTypeUPIFraud
	case f.HasCategory(intel.CategoryPrize):
		return ScamTypeLottery
	case f.HasCategory(intel.CategoryAccountSecurity):
		return ScamTypeBankFraud
	case f.Score > 30:
		return ScamTypeOther
	}
	return ScamTypeNone
}

func patternIndicators(f intel.Findings) []string {
	var out []string
	if len(f.Record.PhishingLinks) > 0 {
		out = append(out, "suspicious_link")
	}
	if len(f.Record.UPIIDs) > 0 {
		out = append(out, "upi_id")
	}
	if len(f.Record.PhoneNumbers) > 0 {
		out = append(out, "phone_number")
	}
	if len(f.Record.BankAccounts) > 0 {
		out = append(out, "bank_account")
	}
	for _, cat := range f.Categories {
		out = append(out, "keywords:"+string(cat))
	}
	return out
}

func patternReasoning(f intel.Findings) string {
	if f.Score == 0 && len(f.Categories) == 0 {
		return "no scam patterns matched"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "pattern score %d/%d", f.Score, intel.MaxScore)
	if len(f.Categories) > 0 {
		fmt.Fprintf(&b, "; keyword categories: %s", strings.Join(f.SortedCategories(), ", "))
	}
	return b.String()
}
