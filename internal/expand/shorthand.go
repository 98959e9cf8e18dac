package expand

import (
	"errors"
	"regexp"
	"strings"
)

// variablePath matches a dotted variable reference such as customer.name or
// items.0.price.
var variablePath = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z0-9_]+)*$`)

// rewriteShorthand converts every ${expr} into a pongo2 output tag.
// Returns a syntax *Error positioned at the "${" when it is unterminated or
// empty. Newlines are preserved so pongo2 line numbers stay accurate.
func rewriteShorthand(src string) (string, error) {
	if !strings.Contains(src, "${") {
		return src, nil
	}

	var b strings.Builder
	b.Grow(len(src) + 32)

	i := 0
	for {
		j := strings.Index(src[i:], "${")
		if j < 0 {
			b.WriteString(src[i:])
			return b.String(), nil
		}
		start := i + j
		b.WriteString(src[i:start])

		end := matchBrace(src, start+2)
		if end < 0 {
			return "", syntaxAt(src, start, errors.New("unterminated ${ expression"))
		}
		raw := src[start+2 : end]
		if strings.TrimSpace(raw) == "" {
			return "", syntaxAt(src, start, errors.New("empty ${} expression"))
		}

		b.WriteString(interpolation(raw))
		i = end + 1
	}
}

// interpolation builds the output tag for the raw text between "${" and
// "}". When the leading term is a variable path the strict filter is applied
// to it before any other filter. Newlines dropped by trimming are re-emitted
// inside the tag.
func interpolation(raw string) string {
	expr := strings.TrimSpace(raw)
	head, tail := splitFilters(expr)
	head = strings.TrimSpace(head)

	body := expr
	if variablePath.MatchString(head) {
		body = head + `|strict:"` + head + `"` + tail
	}
	pad := strings.Repeat("\n", strings.Count(raw, "\n")-strings.Count(body, "\n"))
	return "{{ " + body + pad + " }}"
}

// splitFilters splits expr at the first "|" outside quotes and parentheses.
func splitFilters(expr string) (head, tail string) {
	var quote byte
	depth := 0
	for k := 0; k < len(expr); k++ {
		c := expr[k]
		if quote != 0 {
			if c == '\\' {
				k++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
		case '|':
			if depth == 0 {
				return expr[:k], expr[k:]
			}
		}
	}
	return expr, ""
}

// matchBrace returns the index of the "}" closing an expression that starts
// at from, skipping nested braces and quoted strings. Returns -1 if none.
func matchBrace(src string, from int) int {
	var quote byte
	depth := 0
	for k := from; k < len(src); k++ {
		c := src[k]
		if quote != 0 {
			if c == '\\' {
				k++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return k
			}
			depth--
		}
	}
	return -1
}

func syntaxAt(src string, offset int, err error) *Error {
	line := 1 + strings.Count(src[:offset], "\n")
	col := offset + 1
	if nl := strings.LastIndexByte(src[:offset], '\n'); nl >= 0 {
		col = offset - nl
	}
	return &Error{Kind: ErrSyntax, Line: line, Column: col, Err: err}
}
