package editor

import (
	"fmt"
	"strings"
)

// codeEscaper escapes the characters that would otherwise let code content
// break out of its container. Ampersand goes first so already-produced
// entities are not double-escaped.
var codeEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeCode HTML-escapes raw code so it renders as literal text.
func EscapeCode(code string) string {
	return codeEscaper.Replace(code)
}

// InsertCodeBlock escapes the given code and inserts it wrapped in a
// preformatted container at the current selection.
func InsertCodeBlock(s State, code string) State {
	fragment := "<pre><code>" + EscapeCode(code) + "</code></pre>"
	return InsertFragment(s, fragment)
}

// InsertImage embeds an image inline as a data URI. Every caller-supplied
// value is escaped: a quote in the mime type or payload must not be able to
// terminate the attribute.
func InsertImage(s State, mimeType, base64Data, alt string) State {
	fragment := fmt.Sprintf(`<img src="data:%s;base64,%s" alt="%s">`,
		EscapeCode(mimeType), EscapeCode(base64Data), EscapeCode(alt))
	return InsertFragment(s, fragment)
}

// InsertAttachment inserts a file-attachment placeholder linking to the
// uploaded file.
func InsertAttachment(s State, filename, url string) State {
	fragment := fmt.Sprintf(`<a class="attachment" href="%s" download>%s</a>`,
		EscapeCode(url), EscapeCode(filename))
	return InsertFragment(s, fragment)
}

// InsertVoiceNote inserts a voice-note player for a recorded clip.
func InsertVoiceNote(s State, url string, durationSeconds int) State {
	fragment := fmt.Sprintf(`<audio class="voice-note" controls src="%s" data-duration="%d"></audio>`,
		EscapeCode(url), durationSeconds)
	return InsertFragment(s, fragment)
}
