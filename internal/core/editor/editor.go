// Package editor implements the content model behind the rich-text comment
// editor. Editing happens on an explicit State value (HTML string plus a
// selection range) through pure transformation functions, so it stays
// independent of any concrete UI toolkit's selection API.
package editor

import "strings"

// State is an immutable snapshot of the editor: the HTML content and the
// current selection expressed as byte offsets into it. SelStart == SelEnd
// means a collapsed caret.
type State struct {
	Content  string
	SelStart int
	SelEnd   int
}

// NewState returns an empty editor with the caret at position 0.
func NewState() State {
	return State{}
}

// WithSelection returns a copy of the state with the given selection. Out of
// range or inverted values are normalized by clampSelection on the next
// operation rather than rejected here.
func (s State) WithSelection(start, end int) State {
	s.SelStart = start
	s.SelEnd = end
	return s
}

// HasSelection reports whether a non-empty range is selected.
func (s State) HasSelection() bool {
	start, end, ok := s.clampSelection()
	return ok && start != end
}

// clampSelection normalizes the selection against the current content.
// It reports ok=false when the stored range was unusable, in which case the
// returned offsets point at the end of the content. Falling back to append
// keeps every operation total: a stale selection never fails an insert.
func (s State) clampSelection() (start, end int, ok bool) {
	n := len(s.Content)
	start, end = s.SelStart, s.SelEnd
	if start > end {
		start, end = end, start
	}
	if start < 0 || end > n {
		return n, n, false
	}
	return start, end, true
}

// InsertFragment inserts an HTML fragment at the current selection, replacing
// any selected range, and leaves the caret immediately after the inserted
// content. An unusable selection degrades to appending at the end.
func InsertFragment(s State, html string) State {
	start, end, _ := s.clampSelection()

	var b strings.Builder
	b.Grow(len(s.Content) - (end - start) + len(html))
	b.WriteString(s.Content[:start])
	b.WriteString(html)
	b.WriteString(s.Content[end:])

	caret := start + len(html)
	return State{Content: b.String(), SelStart: caret, SelEnd: caret}
}

// InlineStyle names a formatting operation on the current selection.
type InlineStyle string

const (
	StyleBold         InlineStyle = "bold"
	StyleItalic       InlineStyle = "italic"
	StyleUnderline    InlineStyle = "underline"
	StyleBulletList   InlineStyle = "bullet-list"
	StyleNumberedList InlineStyle = "numbered-list"
)

var inlineTags = map[InlineStyle]string{
	StyleBold:      "strong",
	StyleItalic:    "em",
	StyleUnderline: "u",
}

var listTags = map[InlineStyle]string{
	StyleBulletList:   "ul",
	StyleNumberedList: "ol",
}

// placeholderText is wrapped when a style is applied with a collapsed caret,
// and left selected so the user can type over it.
const placeholderText = "text"

// ApplyInlineStyle wraps the current selection in the markup for the given
// style. Bold/italic/underline wrap the selected text in their inline tag;
// with no selection a placeholder is wrapped instead and left selected.
// List styles toggle a list container around the current block. Unknown
// styles return the state unchanged.
func ApplyInlineStyle(s State, style InlineStyle) State {
	if tag, ok := listTags[style]; ok {
		return toggleListBlock(s, tag)
	}

	tag, ok := inlineTags[style]
	if !ok {
		return s
	}

	start, end, _ := s.clampSelection()
	selected := s.Content[start:end]

	if selected == "" {
		open := "<" + tag + ">"
		fragment := open + placeholderText + "</" + tag + ">"
		next := InsertFragment(State{Content: s.Content, SelStart: start, SelEnd: end}, fragment)
		// Select the placeholder inside the new tags.
		next.SelStart = start + len(open)
		next.SelEnd = next.SelStart + len(placeholderText)
		return next
	}

	fragment := "<" + tag + ">" + selected + "</" + tag + ">"
	return InsertFragment(State{Content: s.Content, SelStart: start, SelEnd: end}, fragment)
}

// toggleListBlock wraps the current block in a list container, or unwraps it
// when the block is already wrapped in that same container. The current
// block is the run of content between newlines around the selection.
func toggleListBlock(s State, tag string) State {
	start, end, _ := s.clampSelection()

	blockStart := strings.LastIndexByte(s.Content[:start], '\n') + 1
	blockEnd := end
	if i := strings.IndexByte(s.Content[end:], '\n'); i >= 0 {
		blockEnd = end + i
	} else {
		blockEnd = len(s.Content)
	}
	block := s.Content[blockStart:blockEnd]

	open := "<" + tag + "><li>"
	close := "</li></" + tag + ">"

	var replacement string
	if strings.HasPrefix(block, open) && strings.HasSuffix(block, close) {
		replacement = block[len(open) : len(block)-len(close)]
	} else {
		replacement = open + block + close
	}

	next := InsertFragment(State{Content: s.Content, SelStart: blockStart, SelEnd: blockEnd}, replacement)
	return next
}
