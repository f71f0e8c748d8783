package responder

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxReplyLength is the ceiling above which replies are cut to two
// sentences.
const DefaultMaxReplyLength = 160

var sentenceRE = regexp.MustCompile(`[^.!?।]+[.!?।]+`)

// truncateReply keeps the first two sentence-like segments of text when it
// exceeds limit characters. Text without sentence breaks is cut at the last
// word boundary before limit.
func truncateReply(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	sentences := sentenceRE.FindAllString(text, 2)
	if len(sentences) > 0 {
		return strings.TrimSpace(strings.Join(sentences, ""))
	}
	runes := []rune(text)[:limit]
	cut := string(runes)
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}
