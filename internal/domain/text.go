package domain

import "strings"

// StyleRun is a contiguous span of description text sharing one style.
// Color is an optional hex color such as "#cc0000"; empty means default.
type StyleRun struct {
	Text      string `json:"text"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
	Color     string `json:"color,omitempty"`
}

// StyledText is formatted description text as an ordered sequence of style
// runs. A plain description is a single unstyled run.
type StyledText []StyleRun

// PlainText builds a StyledText from an unformatted string.
func PlainText(s string) StyledText {
	if s == "" {
		return nil
	}
	return StyledText{{Text: s}}
}

// Plain returns the text content with all styling stripped.
func (t StyledText) Plain() string {
	if len(t) == 1 {
		return t[0].Text
	}
	var b strings.Builder
	for _, run := range t {
		b.WriteString(run.Text)
	}
	return b.String()
}

// Equal reports whether two styled texts have identical runs.
func (t StyledText) Equal(other StyledText) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if t[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the styled text.
func (t StyledText) Clone() StyledText {
	if t == nil {
		return nil
	}
	out := make(StyledText, len(t))
	copy(out, t)
	return out
}
