package ast

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// Source holds the original text of a parsed expression plus a byte-offset
// line table, and knows how to translate a byte offset into (line, column)
// and format a positional diagnostic (§4.1). Source is built once per parse
// and never mutated afterward.
type Source struct {
	Description string
	content     string
	// lineOffsets[i] is the byte offset of the first character of line i+1
	// (lines are 1-indexed in Location).
	lineOffsets []int
}

// NewSource builds a Source from the given text, computing its line table
// once so that LocationOf does not rescan the text.
func NewSource(text, description string) *Source {
	s := &Source{Description: description, content: text}
	s.lineOffsets = append(s.lineOffsets, 0)
	for i, r := range text {
		if r == '\n' {
			s.lineOffsets = append(s.lineOffsets, i+1)
		}
	}
	return s
}

// Content returns the source text.
func (s *Source) Content() string { return s.content }

// Location is a 1-indexed (line, column) position. Column counts UTF-16 code
// units, matching the baseline diagnostic format (§4.1).
type Location struct {
	Line   int
	Column int
}

// LocationOf translates a byte offset into the source into a Location.
func (s *Source) LocationOf(offset int) Location {
	line := 1
	// Binary search would be the production choice; line counts in a single
	// CEL expression are small enough that a linear scan from the back is
	// simpler and just as fast in practice.
	for i := len(s.lineOffsets) - 1; i >= 0; i-- {
		if s.lineOffsets[i] <= offset {
			line = i + 1
			lineStart := s.lineOffsets[i]
			col := utf16Len(s.content[lineStart:offset]) + 1
			return Location{Line: line, Column: col}
		}
	}
	return Location{Line: line, Column: 1}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += len(utf16.Encode([]rune{r}))
	}
	return n
}

// Snippet returns the text of the given 1-indexed source line, without its
// trailing newline.
func (s *Source) Snippet(line int) string {
	if line < 1 || line > len(s.lineOffsets) {
		return ""
	}
	start := s.lineOffsets[line-1]
	end := len(s.content)
	if line < len(s.lineOffsets) {
		end = s.lineOffsets[line] - 1
	}
	if end < start {
		end = start
	}
	return strings.TrimSuffix(s.content[start:end], "\r")
}

// Issue is a single compile-time diagnostic (§4.1, §7). Offset is the byte
// offset of the node responsible for the issue.
type Issue struct {
	Offset  int
	Message string
}

// FormatIssue renders iss in the conventional form:
//
//	ERROR: <description>:<line>:<col>: <msg>
//	 | <source line>
//	 | ......^
func (s *Source) FormatIssue(iss Issue) string {
	loc := s.LocationOf(iss.Offset)
	line := s.Snippet(loc.Line)
	pointer := strings.Repeat(".", max(loc.Column-1, 0)) + "^"
	return fmt.Sprintf("ERROR: %s:%d:%d: %s\n | %s\n | %s",
		s.Description, loc.Line, loc.Column, iss.Message, line, pointer)
}
