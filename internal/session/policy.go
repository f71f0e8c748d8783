package session

// DefaultMaxMessages is the runaway ceiling on inbound messages.
const DefaultMaxMessages = 20

const (
	ReasonIntelligence = "intelligence_extracted"
	ReasonMaxMessages  = "max_messages"
)

// StopPolicy decides when an engaged session has gathered enough.
type StopPolicy struct {
	MaxMessages int
}

// NewStopPolicy returns a policy with the given ceiling; non-positive values
// use DefaultMaxMessages.
func NewStopPolicy(maxMessages int) StopPolicy {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return StopPolicy{MaxMessages: maxMessages}
}

// ShouldStop reports whether s must complete, and why. Any single actionable
// identifier in the cumulative record is enough.
func (p StopPolicy) ShouldStop(s *Session) (bool, string) {
	if s.ExtractedIntelligence.HasActionable() {
		return true, ReasonIntelligence
	}
	limit := p.MaxMessages
	if limit <= 0 {
		limit = DefaultMaxMessages
	}
	if s.MessageCount >= limit {
		return true, ReasonMaxMessages
	}
	return false, ""
}
