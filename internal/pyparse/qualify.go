package pyparse

import "strings"

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9' || c == '.'
}

func isLiteralForm(name string) bool {
	return name == "Literal" || strings.HasSuffix(name, ".Literal")
}

// qualify rewrites every name in an annotation through qualifyName. Quoted
// forward references are rewritten too, except the values of Literal.
func (w *walker) qualify(expr string) string {
	if expr == "" {
		return ""
	}

	var (
		b           strings.Builder
		literal     []bool
		lastLiteral bool
	)

	inLiteral := func() bool {
		return len(literal) > 0 && literal[len(literal)-1]
	}

	for i := 0; i < len(expr); {
		c := expr[i]

		switch {
		case c == '\'' || c == '"':
			end := strings.IndexByte(expr[i+1:], c)
			if end < 0 {
				b.WriteString(expr[i:])
				return b.String()
			}

			inner := expr[i+1 : i+1+end]
			if !inLiteral() {
				inner = w.qualify(inner)
			}

			b.WriteByte(c)
			b.WriteString(inner)
			b.WriteByte(c)

			i += end + 2
			lastLiteral = false
		case isIdentStart(c):
			j := i
			for j < len(expr) && isIdentPart(expr[j]) {
				j++
			}

			name := w.qualifyName(expr[i:j])
			b.WriteString(name)

			i = j
			lastLiteral = isLiteralForm(name)
		case c == '[':
			literal = append(literal, lastLiteral)
			b.WriteByte(c)

			i++
			lastLiteral = false
		case c == ']':
			if len(literal) > 0 {
				literal = literal[:len(literal)-1]
			}

			b.WriteByte(c)

			i++
			lastLiteral = false
		default:
			b.WriteByte(c)

			if c != ' ' {
				lastLiteral = false
			}

			i++
		}
	}

	return b.String()
}
