package pipeline

import "strings"

// XMLProlog is the declaration that starts every synthesized document.
const XMLProlog = `<?xml version="1.0" encoding="UTF-8"?>`

const xhtmlHead = XMLProlog +
	"<!DOCTYPE html PUBLIC \"-//W3C//DTD XHTML 1.0 Transitional//EN\" \n" +
	" \"http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd\">\n" +
	"<html xmlns=\"http://www.w3.org/1999/xhtml\">\n" +
	"<head><meta http-equiv=\"Content-Type\" content=\"text/html; charset=UTF-8\" /></head><body>"

const xhtmlTail = "</body></html>"

// EnsureXHTML wraps markup that has no doctype declaration in a minimal
// XHTML 1.0 document. Markup already starting with a doctype, optionally
// preceded by an XML declaration, is returned unchanged. A leading XML
// declaration without a doctype is dropped in favor of XMLProlog.
func EnsureXHTML(markup string) string {
	if HasDoctype(markup) {
		return markup
	}
	markup = stripProlog(markup)

	var b strings.Builder
	b.Grow(len(xhtmlHead) + len(markup) + len(xhtmlTail))
	b.WriteString(xhtmlHead)
	b.WriteString(markup)
	b.WriteString(xhtmlTail)
	return b.String()
}

// HasDoctype reports whether the trimmed markup starts with a doctype
// declaration, ignoring case and a leading XML declaration.
func HasDoctype(markup string) bool {
	s := strings.TrimSpace(markup)
	if hasPrefixFold(s, "<?xml") {
		end := strings.Index(s, "?>")
		if end == -1 {
			return false
		}
		s = strings.TrimSpace(s[end+2:])
	}
	return hasPrefixFold(s, "<!doctype")
}

// stripProlog removes a leading XML declaration and the whitespace before it.
func stripProlog(markup string) string {
	s := strings.TrimLeft(markup, " \t\r\n")
	if !hasPrefixFold(s, "<?xml") {
		return markup
	}
	end := strings.Index(s, "?>")
	if end == -1 {
		return markup
	}
	return s[end+2:]
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
