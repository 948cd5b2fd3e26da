package effect

import "fmt"

type tokenKind uint8

const (
	tokIdent tokenKind = iota
	tokNumber
	tokPunct
)

// token is a lexical token of effect source. Whitespace and comments are
// not tokens; they survive as the gaps between token spans.
type token struct {
	kind       tokenKind
	start, end int
	text       string
}

func (t token) is(s string) bool { return t.kind == tokPunct && t.text == s }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

// scan splits src into tokens.
func scan(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end, err := skipBlockComment(src, i)
			if err != nil {
				return nil, err
			}
			i = end
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, start: start, end: i, text: src[start:i]})
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			i = scanNumber(src, i)
			toks = append(toks, token{kind: tokNumber, start: start, end: i, text: src[start:i]})
		case c == '-' && i+1 < len(src) && src[i+1] == '>':
			toks = append(toks, token{kind: tokPunct, start: i, end: i + 2, text: "->"})
			i += 2
		case c < 0x80:
			toks = append(toks, token{kind: tokPunct, start: i, end: i + 1, text: src[i : i+1]})
			i++
		default:
			return nil, fmt.Errorf("%w: unexpected byte 0x%02x at offset %d", ErrSyntax, c, i)
		}
	}
	return toks, nil
}

// skipBlockComment returns the offset just past the (possibly nested)
// block comment starting at i.
func skipBlockComment(src string, i int) (int, error) {
	depth := 0
	for i < len(src) {
		switch {
		case src[i] == '/' && i+1 < len(src) && src[i+1] == '*':
			depth++
			i += 2
		case src[i] == '*' && i+1 < len(src) && src[i+1] == '/':
			depth--
			i += 2
			if depth == 0 {
				return i, nil
			}
		default:
			i++
		}
	}
	return 0, fmt.Errorf("%w: unterminated block comment", ErrSyntax)
}

func scanNumber(src string, i int) int {
	if src[i] == '0' && i+1 < len(src) && (src[i+1] == 'x' || src[i+1] == 'X') {
		i += 2
		for i < len(src) && (isDigit(src[i]) || (src[i]|0x20 >= 'a' && src[i]|0x20 <= 'f') || src[i] == '.') {
			i++
		}
	} else {
		for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
			i++
		}
		if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
			i++
			if i < len(src) && (src[i] == '+' || src[i] == '-') {
				i++
			}
			for i < len(src) && isDigit(src[i]) {
				i++
			}
		}
	}
	// Type suffix: 1u, 2i, 3.0f, 4.0h.
	if i < len(src) && (src[i] == 'u' || src[i] == 'i' || src[i] == 'f' || src[i] == 'h') {
		i++
	}
	return i
}
