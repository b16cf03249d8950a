package slack

import "strings"

// ParseAppMentionText strips the leading "<@USERID>" mention and returns the rest.
//
// For example, given text "<@B123> hello world" it returns "hello world".
func ParseAppMentionText(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "<@") {
		return trimmed
	}
	end := strings.IndexByte(trimmed, '>')
	if end < 0 {
		return trimmed
	}
	return strings.TrimSpace(trimmed[end+1:])
}
