// Package lexer implements the comment/whitespace preprocessing shared by the
// Assembler, VM Translator and Syntax Analyzer front-ends.
//
// Comments and string literals are scanned with a small hand-rolled state machine
// rather than a single regex sweep, so that "//" or "/*" occurring inside a string
// constant is never mistaken for the start of a comment.
package lexer

// state enumerates where the scanner currently sits while sweeping the source.
type state uint8

const (
	inCode state = iota
	inLineComment
	inBlockComment
	inString
)

// Strip removes line ('// ...'), block ('/* ... */') and doc ('/** ... */') comments
// from src, leaving string literals untouched. Doc comments share the block-comment
// shape and are stripped identically; the distinction is cosmetic only.
func Strip(src []byte) []byte {
	out := make([]byte, 0, len(src))
	st := inCode

	for i := 0; i < len(src); i++ {
		c := src[i]
		var next byte
		if i+1 < len(src) {
			next = src[i+1]
		}

		switch st {
		case inCode:
			switch {
			case c == '/' && next == '/':
				st = inLineComment
				i++
			case c == '/' && next == '*':
				st = inBlockComment
				i++
			case c == '"':
				st = inString
				out = append(out, c)
			default:
				out = append(out, c)
			}

		case inLineComment:
			if c == '\n' {
				st = inCode
				out = append(out, c)
			}

		case inBlockComment:
			if c == '*' && next == '/' {
				st = inCode
				i++
			}

		case inString:
			out = append(out, c)
			if c == '"' {
				st = inCode
			}
		}
	}

	return out
}

// Lines runs Strip and returns one entry per non-empty, whitespace-trimmed source
// line, in source order. Shaped for one-instruction-per-line input such as Assembler
// (the Assembler itself feeds Strip's output to its parser and does not call this).
func Lines(src []byte) []string {
	stripped := Strip(src)
	lines := splitLines(stripped)

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := trimSpace(line)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Fields runs Strip and returns one []string per non-empty line, each further
// split on whitespace. Shaped for VM commands, which carry 0-2 operands (the VM
// Translator itself feeds Strip's output to its parser and does not call this).
func Fields(src []byte) [][]string {
	lines := Lines(src)
	out := make([][]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, splitFields(line))
	}
	return out
}

func splitLines(src []byte) []string {
	var lines []string
	start := 0
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			lines = append(lines, string(src[start:i]))
			start = i + 1
		}
	}
	lines = append(lines, string(src[start:]))
	return lines
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\v' || b == '\f'
}

func trimSpace(s string) string {
	start := 0
	for start < len(s) && isSpace(s[start]) {
		start++
	}
	end := len(s)
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func splitFields(s string) []string {
	var fields []string
	start := -1
	for i := 0; i < len(s); i++ {
		if isSpace(s[i]) {
			if start >= 0 {
				fields = append(fields, s[start:i])
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, s[start:])
	}
	return fields
}
