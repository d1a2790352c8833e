package markers

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedConflict = errors.New("malformed conflict markers")

var (
	ErrNestedMarker         = errors.New("nested conflict marker")
	ErrUnexpectedSeparator  = errors.New("unexpected separator")
	ErrUnterminatedConflict = errors.New("unterminated conflict")
)

const (
	markStart = "<<<<<<<"
	markBase  = "|||||||"
	markMid   = "======="
	markEnd   = ">>>>>>>"
)

// ParseError describes a malformed marker structure. Line and OpenLine are
// 0-based; Error reports them 1-based the way editors do.
type ParseError struct {
	Kind     error
	Path     string
	Line     int
	OpenLine int
}

func (e *ParseError) Error() string {
	where := ""
	if e.Path != "" {
		where = e.Path + ": "
	}
	switch e.Kind {
	case ErrNestedMarker:
		return fmt.Sprintf("%s%v at line %d (conflict opened at line %d is still open)", where, e.Kind, e.Line+1, e.OpenLine+1)
	case ErrUnterminatedConflict:
		return fmt.Sprintf("%s%v: conflict opened at line %d has no closing marker", where, e.Kind, e.OpenLine+1)
	default:
		return fmt.Sprintf("%s%v at line %d", where, e.Kind, e.Line+1)
	}
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrMalformedConflict, e.Kind}
}

type parseState int

const (
	stateSearching parseState = iota
	stateInCurrent
	stateInBase
	stateInIncoming
)

// Parse splits data into lines and returns its conflict hunks in file order.
// A file without markers yields no hunks and no error.
func Parse(data []byte) ([]Hunk, error) {
	lines, _ := SplitLines(string(data))
	return ParseLines(lines)
}

// ParseLines runs the marker state machine over an already split line
// sequence. It is strict: every opening marker needs a separator and a closing
// marker before the next opening marker or the end of input.
func ParseLines(lines []string) ([]Hunk, error) {
	var hunks []Hunk
	state := stateSearching
	var cur Hunk
	baseStart := -1

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, markStart):
			if state != stateSearching {
				return nil, &ParseError{Kind: ErrNestedMarker, Line: i, OpenLine: cur.StartLine}
			}
			cur = Hunk{StartLine: i, CurrentLabel: markerLabel(line)}
			baseStart = -1
			state = stateInCurrent

		case state == stateInCurrent && strings.HasPrefix(line, markBase):
			baseStart = i
			state = stateInBase

		case isSeparator(line):
			switch state {
			case stateInCurrent, stateInBase:
				cur.SeparatorLine = i
				if baseStart >= 0 {
					cur.Current = cloneLines(lines[cur.StartLine+1 : baseStart])
					cur.Base = cloneLines(lines[baseStart+1 : i])
				} else {
					cur.Current = cloneLines(lines[cur.StartLine+1 : i])
				}
				state = stateInIncoming
			default:
				pe := &ParseError{Kind: ErrUnexpectedSeparator, Line: i, OpenLine: -1}
				if state == stateInIncoming {
					pe.OpenLine = cur.StartLine
				}
				return nil, pe
			}

		case state == stateInIncoming && strings.HasPrefix(line, markEnd):
			cur.Incoming = cloneLines(lines[cur.SeparatorLine+1 : i])
			cur.IncomingLabel = markerLabel(line)
			cur.EndLine = i
			hunks = append(hunks, cur)
			state = stateSearching
		}
	}

	if state != stateSearching {
		return nil, &ParseError{Kind: ErrUnterminatedConflict, Line: len(lines), OpenLine: cur.StartLine}
	}
	return hunks, nil
}

// SplitLines splits text on "\n" without touching any other byte, so "\r"
// of CRLF files stays in the line. trailingNewline reports whether text ended
// with a terminator.
func SplitLines(text string) (lines []string, trailingNewline bool) {
	if text == "" {
		return nil, false
	}
	trailingNewline = strings.HasSuffix(text, "\n")
	if trailingNewline {
		text = text[:len(text)-1]
	}
	return strings.Split(text, "\n"), trailingNewline
}

// JoinLines is the inverse of SplitLines. With no lines and trailingNewline
// set it returns a lone terminator.
func JoinLines(lines []string, trailingNewline bool) string {
	if len(lines) == 0 {
		if trailingNewline {
			return "\n"
		}
		return ""
	}
	out := strings.Join(lines, "\n")
	if trailingNewline {
		out += "\n"
	}
	return out
}

// IsResolved reports whether data parses cleanly and contains no conflict.
// Malformed marker structures count as unresolved.
func IsResolved(data []byte) bool {
	hunks, err := Parse(data)
	if err != nil {
		return false
	}
	return len(hunks) == 0
}

func isSeparator(line string) bool {
	return strings.TrimSuffix(line, "\r") == markMid
}

func markerLabel(line string) string {
	return strings.TrimSpace(line[len(markStart):])
}

func cloneLines(lines []string) []string {
	return append([]string{}, lines...)
}
