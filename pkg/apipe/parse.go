package apipe

import (
	"errors"
	"strings"
)

var errUnterminated = errors.New("unterminated quote")

// Parse builds a pipeline from a shell-like string such as
//
//	echo "This is a test." | grep -Eo \w\w\sa[^.]*
//
// Segments are separated by an unescaped, unquoted pipe character. Within
// a segment, tokens are whitespace-separated; a double-quoted substring is
// one token with the quotes stripped, and backslash escapes a quote or a
// backslash inside quotes. Any other backslash passes through literally.
// No variable expansion, globbing, or other shell features are recognized.
func Parse(s string) (*Pipeline, error) {
	if strings.TrimSpace(s) == "" {
		return nil, &ParseError{Segment: 0, Reason: "empty pipeline string"}
	}

	p := New()
	for i, seg := range splitPipes(s) {
		if strings.TrimSpace(seg) == "" {
			return nil, &ParseError{Segment: i, Reason: "empty segment"}
		}
		tokens, err := tokenizeSegment(seg)
		if err != nil {
			return nil, &ParseError{Segment: i, Reason: err.Error()}
		}
		if len(tokens) == 0 {
			return nil, &ParseError{Segment: i, Reason: "missing program token"}
		}
		if tokens[0] == "" {
			return nil, &ParseError{Segment: i, Reason: "empty program name"}
		}
		p.Add(NewCommand(tokens[0], tokens[1:]...))
	}
	return p, nil
}

// splitPipes cuts the string on unquoted, unescaped pipe characters.
// Quoted regions are copied verbatim, escape pairs included, so the
// per-segment tokenizer sees them untouched.
func splitPipes(s string) []string {
	var segs []string
	var cur strings.Builder

	inQuote := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '\\' && !inQuote && i+1 < len(s) && s[i+1] == '|':
			cur.WriteByte('|')
			i++
		case ch == '\\' && inQuote:
			cur.WriteByte(ch)
			if i+1 < len(s) {
				i++
				cur.WriteByte(s[i])
			}
		case ch == '"':
			inQuote = !inQuote
			cur.WriteByte(ch)
		case ch == '|' && !inQuote:
			segs = append(segs, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	return append(segs, cur.String())
}

// tokenizeSegment splits one pipeline segment into program and argument
// tokens. An adjacent quoted and unquoted run forms a single token, and an
// empty quoted pair produces an empty token.
func tokenizeSegment(seg string) ([]string, error) {
	var tokens []string
	var cur strings.Builder

	started := false
	inQuote := false
	for i := 0; i < len(seg); i++ {
		ch := seg[i]
		switch {
		case inQuote && ch == '\\':
			if i+1 < len(seg) && (seg[i+1] == '"' || seg[i+1] == '\\') {
				i++
				cur.WriteByte(seg[i])
			} else {
				cur.WriteByte(ch)
			}
		case ch == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (ch == ' ' || ch == '\t'):
			if started {
				tokens = append(tokens, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteByte(ch)
			started = true
		}
	}
	if inQuote {
		return nil, errUnterminated
	}
	if started {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}
