package llm

import (
	"regexp"
	"strings"
)

// markupPatterns match the bracketed pseudo-tags (e.g. "<|DSML|invoke>", "<|tool_sep|>")
// that some models leak from their internal formatting. DeepSeek emits both the
// ASCII and the fullwidth bar.
var markupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*[|｜]\s*DSML\s*[|｜][^>]*>`),
	regexp.MustCompile(`(?i)</\s*[|｜]\s*DSML\s*[|｜][^>]*>`),
	regexp.MustCompile(`(?i)<\s*[|｜]\s*[^>]+\s*[|｜]>`),
}

// Sanitize removes stray model markup tokens from s. It leaves surrounding
// whitespace alone so it can be applied to individual stream fragments.
// The result is a fixed point: Sanitize(Sanitize(s)) == Sanitize(s), and a
// string without markup is returned unchanged.
func Sanitize(s string) string {
	for {
		out := s
		for _, re := range markupPatterns {
			out = re.ReplaceAllString(out, "")
		}
		// every removal shortens the string, so this terminates
		if out == s {
			return out
		}
		s = out
	}
}

// maxPendingMarkup bounds how much of an unterminated "<..." tail is held back.
const maxPendingMarkup = 64

// StreamSanitizer applies Sanitize to a token stream, holding back a short
// unterminated "<" tail so a tag split across fragments is still removed.
// The zero value is ready to use.
type StreamSanitizer struct {
	pending string
}

// Write returns the clean text that can be forwarded for this fragment.
// It may be empty when the fragment is held back.
func (s *StreamSanitizer) Write(fragment string) string {
	buf := s.pending + fragment
	s.pending = ""
	if i := strings.LastIndex(buf, "<"); i >= 0 && !strings.Contains(buf[i:], ">") && len(buf)-i <= maxPendingMarkup {
		s.pending = buf[i:]
		buf = buf[:i]
	}
	return Sanitize(buf)
}

// Flush returns whatever is still held back.
func (s *StreamSanitizer) Flush() string {
	out := Sanitize(s.pending)
	s.pending = ""
	return out
}
