package jack

import (
	"fmt"

	"github.com/n2t-toolchain/n2t/pkg/lexer"
)

// Tokenize turns Jack source into its flat token sequence. Comments are stripped
// with the shared string-aware state machine (pkg/lexer.Strip) before scanning,
// so a '//' or '/*' inside a string constant is never mistaken for a comment.
func Tokenize(src []byte) ([]Token, error) {
	stripped := lexer.Strip(src)

	var tokens []Token
	for i := 0; i < len(stripped); {
		c := stripped[i]

		switch {
		case isSpace(c):
			i++

		case c == '"':
			end := i + 1
			for end < len(stripped) && stripped[end] != '"' {
				end++
			}
			if end >= len(stripped) {
				return nil, fmt.Errorf("unterminated string constant starting at byte %d", i)
			}
			tokens = append(tokens, Token{Kind: StringConstant, Lexeme: string(stripped[i+1 : end])})
			i = end + 1

		case isDigit(c):
			end := i
			for end < len(stripped) && isDigit(stripped[end]) {
				end++
			}
			lexeme := string(stripped[i:end])
			if value := parseUint(lexeme); value >= MaxIntegerConstant {
				return nil, fmt.Errorf("integer constant '%s' is out of range [0, %d)", lexeme, MaxIntegerConstant)
			}
			tokens = append(tokens, Token{Kind: IntegerConstant, Lexeme: lexeme})
			i = end

		case isIdentStart(c):
			end := i
			for end < len(stripped) && isIdentPart(stripped[end]) {
				end++
			}
			lexeme := string(stripped[i:end])
			kind := Identifier
			if keywords[lexeme] {
				kind = Keyword
			}
			tokens = append(tokens, Token{Kind: kind, Lexeme: lexeme})
			i = end

		case symbols[c]:
			tokens = append(tokens, Token{Kind: Symbol, Lexeme: string(c)})
			i++

		default:
			return nil, fmt.Errorf("unrecognized character '%c' at byte %d", c, i)
		}
	}

	return tokens, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\v' || b == '\f'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

func parseUint(s string) int {
	value := 0
	for _, c := range s {
		value = value*10 + int(c-'0')
	}
	return value
}
