package resolve

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokName
	tokString
	tokNumber
	tokEllipsis
	tokLBrack
	tokRBrack
	tokComma
	tokPipe
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNamePart(r rune) bool {
	return isNameStart(r) || unicode.IsDigit(r) || r == '.' || r == '/' || r == '-'
}

// lex splits src into tokens. String tokens carry their unquoted content.
func lex(src string) ([]token, error) {
	var toks []token

	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])

		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '[':
			toks = append(toks, token{kind: tokLBrack, text: "[", pos: i})
			i++
		case r == ']':
			toks = append(toks, token{kind: tokRBrack, text: "]", pos: i})
			i++
		case r == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		case r == '|':
			toks = append(toks, token{kind: tokPipe, text: "|", pos: i})
			i++
		case strings.HasPrefix(src[i:], "..."):
			toks = append(toks, token{kind: tokEllipsis, text: "...", pos: i})
			i += 3
		case r == '\'' || r == '"':
			end := strings.IndexRune(src[i+1:], r)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated string at offset %d in %q", ErrMalformed, i, src)
			}

			toks = append(toks, token{kind: tokString, text: src[i+1 : i+1+end], pos: i})
			i += end + 2
		case unicode.IsDigit(r) || (r == '-' && i+1 < len(src) && src[i+1] >= '0' && src[i+1] <= '9'):
			start := i
			i++

			for i < len(src) && (isNamePart(rune(src[i])) && src[i] != '/') {
				i++
			}

			toks = append(toks, token{kind: tokNumber, text: src[start:i], pos: start})
		case isNameStart(r):
			start := i
			for i < len(src) {
				r, size := utf8.DecodeRuneInString(src[i:])
				if !isNamePart(r) {
					break
				}

				i += size
			}

			toks = append(toks, token{kind: tokName, text: src[start:i], pos: start})
		default:
			return nil, fmt.Errorf("%w: unexpected %q at offset %d in %q", ErrMalformed, r, i, src)
		}
	}

	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}
