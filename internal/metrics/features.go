package metrics

import (
	"strings"
	"unicode/utf8"
)

// Text describes the size of a user message without keeping its content.
type Text struct {
	Bytes int `json:"bytes"`
	Runes int `json:"runes"`
	Words int `json:"words"`
	Lines int `json:"lines"`
}

// CountText measures s. Words split on Unicode whitespace; an empty string has no lines
// and a trailing newline starts one.
func CountText(s string) Text {
	if s == "" {
		return Text{}
	}
	return Text{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: len(strings.Fields(s)),
		Lines: 1 + strings.Count(s, "\n"),
	}
}
