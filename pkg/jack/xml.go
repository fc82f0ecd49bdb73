package jack

import (
	"fmt"
	"io"
	"strings"
)

// xmlEscapes covers the four characters the Jack tokenizer leaves raw in
// Token.Lexeme ('<', '>', '&', '"') so the document stays well-formed once a
// symbol token happens to be one of them.
var xmlEscapes = map[rune]string{
	'<': "&lt;",
	'>': "&gt;",
	'&': "&amp;",
	'"': "&quot;",
}

func escapeXML(s string) string {
	var b strings.Builder
	for _, r := range s {
		if esc, ok := xmlEscapes[r]; ok {
			b.WriteString(esc)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Serialize writes the course's labeled parse-tree XML document for 'root' to
// 'w': every non-terminal becomes a '<name>...</name>' element wrapping its
// recursively-serialized children, and every leaf becomes a single-line
// '<kind> lexeme </kind>' element, matching the original tooling's layout.
func Serialize(root *ParseNode, w io.Writer) error {
	return writeNode(w, root, 0)
}

func writeNode(w io.Writer, n *ParseNode, depth int) error {
	indent := strings.Repeat("  ", depth)

	if n.Token != nil {
		_, err := fmt.Fprintf(w, "%s<%s> %s </%s>\n", indent, n.Token.Kind, escapeXML(n.Token.Lexeme), n.Token.Kind)
		return err
	}

	if _, err := fmt.Fprintf(w, "%s<%s>\n", indent, n.Name); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := writeNode(w, child, depth+1); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s</%s>\n", indent, n.Name); err != nil {
		return err
	}
	return nil
}

// SerializeTokens writes the flat '<tokens>...</tokens>' document used by the
// '--tokens-only' CLI mode: one leaf element per token, in source order, with
// no parse structure.
func SerializeTokens(tokens []Token, w io.Writer) error {
	if _, err := fmt.Fprintln(w, "<tokens>"); err != nil {
		return err
	}
	for _, tok := range tokens {
		if _, err := fmt.Fprintf(w, "  <%s> %s </%s>\n", tok.Kind, escapeXML(tok.Lexeme), tok.Kind); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "</tokens>")
	return err
}
