package responder

import "regexp"

type breakPattern struct {
	re     *regexp.Regexp
	reason string
}

var characterBreakPatterns = []breakPattern{
	{regexp.MustCompile(`(?i)\b(as an?|i('m| am) an?)\s+(ai|a\.i\.|artificial intelligence|language model|virtual assistant|assistant|chatbot|chat bot|bot)\b`), "break:ai_identity"},
	{regexp.MustCompile(`(?i)\b(large language model|language model|llm|openai|chatgpt|gpt-?\d|gemini|anthropic|claude|bedrock)\b`), "break:model_name"},
	{regexp.MustCompile(`(?i)\bi\s+(can(no|')t|cannot|won'?t|am (not able|unable) to|must decline to)\s+(help|assist|comply|provide|continue|engage|participate)`), "break:refusal"},
	{regexp.MustCompile(`(?i)\b(honey ?pot|scam ?bait(ing|er)?|sting operation|this is a trap|trap(ping)? you|fraud detection)\b`), "break:trap_concept"},
	{regexp.MustCompile(`(?i)\b(i('m| am) (programmed|designed|instructed|configured) to|my (instructions|programming|guidelines|system prompt))\b`), "break:instructions"},
	{regexp.MustCompile(`(?i)\b(system prompt|role ?play(ing)?|in character|persona)\b`), "break:meta"},
	{regexp.MustCompile(`(?i)\b(this (looks|seems|appears) (like|to be) a scam|report (this|it|them) to|cyber ?crime (cell|portal)|never share your otp)\b`), "break:scam_warning"},
}

// characterBreaks returns the reasons text would reveal the agent. An empty
// result means the text is safe to send.
func characterBreaks(text string) []string {
	var reasons []string
	for _, p := range characterBreakPatterns {
		if p.re.MatchString(text) {
			reasons = append(reasons, p.reason)
		}
	}
	return reasons
}
