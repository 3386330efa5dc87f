package editor

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips markup the editor never produces before a comment body is
// persisted. Comment HTML arrives from browsers, so everything outside the
// editor's own vocabulary is treated as hostile.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds a policy covering the fragments the editor emits:
// basic formatting, lists, code blocks, data-URI images, attachment links
// and voice-note players.
func NewSanitizer() *Sanitizer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "a", "audio")
	policy.AllowAttrs("download").OnElements("a")
	policy.AllowAttrs("controls", "src").OnElements("audio")
	policy.AllowAttrs("data-duration").Matching(regexp.MustCompile(`^\d+$`)).OnElements("audio")
	policy.AllowDataURIImages()

	return &Sanitizer{policy: policy}
}

// Sanitize returns body with disallowed markup removed.
func (s *Sanitizer) Sanitize(body string) string {
	return s.policy.Sanitize(body)
}
