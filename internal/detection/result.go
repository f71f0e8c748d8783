// Package detection decides whether an inbound message is part of a scam.
//
// A fast pattern stage built on the intel extractor always runs first. Only
// ambiguous messages are escalated to a semantic classifier, and any
// classifier failure degrades to the pattern verdict.
package detection

import "errors"

// ScamType is the category a detection assigns to a conversation.
type ScamType string

const (
	ScamTypeUPIFraud  ScamType = "upi_fraud"
	ScamTypeBankFraud ScamType = "bank_fraud"
	ScamTypePhishing  ScamType = "phishing"
	ScamTypeLottery   ScamType = "lottery"
	ScamTypeFakeOffer ScamType = "fake_offer"
	ScamTypeOther     ScamType = "other"
	ScamTypeNone      ScamType = "none"
)

// ParseScamType maps free text onto a known ScamType. Unknown values map to
// ScamTypeOther so a classifier inventing labels cannot break callers.
func ParseScamType(s string) (ScamType, bool) {
	switch t := ScamType(s); t {
	case ScamTypeUPIFraud, ScamTypeBankFraud, ScamTypePhishing, ScamTypeLottery,
		ScamTypeFakeOffer, ScamTypeOther, ScamTypeNone:
		return t, true
	}
	return ScamTypeOther, false
}

// Method records which stage produced a Result.
type Method string

const (
	MethodPattern  Method = "pattern"
	MethodAI       Method = "ai"
	MethodCombined Method = "combined"
	// MethodFallback is reserved for callers that synthesise a verdict
	// without running either stage.
	MethodFallback Method = "fallback"
)

// Result is one detection verdict. It is produced fresh per message.
type Result struct {
	IsScam     bool     `json:"isScam"`
	Confidence float64  `json:"confidence"`
	ScamType   ScamType `json:"scamType"`
	Indicators []string `json:"indicators"`
	Reasoning  string   `json:"reasoning"`
	Method     Method   `json:"method"`
}

// ErrClassifierUnavailable is returned by a semantic classifier that could not
// be reached or whose output did not parse.
var ErrClassifierUnavailable = errors.New("detection: semantic classifier unavailable")

const (
	// ScamThreshold is the confidence above which a message counts as a scam.
	ScamThreshold = 0.1
	// ShortCircuitConfidence skips the semantic stage entirely.
	ShortCircuitConfidence = 0.7

	patternWeight  = 0.3
	semanticWeight = 0.7
)

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
