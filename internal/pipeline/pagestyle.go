package pipeline

import (
	"strconv"
	"strings"
)

// PageStyle is the page box declared by InjectPageStyle.
type PageStyle struct {
	Size       string // CSS page size keyword, e.g. "a4", "letter"
	Top        float64
	Right      float64
	Bottom     float64
	Left       float64
	FontFamily string // empty means no body font rule
}

// CSS renders the style block for the page box.
func (p PageStyle) CSS() string {
	return "<style>" + p.rules() + "</style>"
}

func (p PageStyle) rules() string {
	var b strings.Builder
	b.WriteString(" @page { size: ")
	b.WriteString(strings.ToLower(p.Size))
	b.WriteString("; margin: ")
	b.WriteString(formatPoints(p.Top))
	b.WriteByte(' ')
	b.WriteString(formatPoints(p.Right))
	b.WriteByte(' ')
	b.WriteString(formatPoints(p.Bottom))
	b.WriteByte(' ')
	b.WriteString(formatPoints(p.Left))
	b.WriteString("; }")
	if p.FontFamily != "" {
		b.WriteString(" body { font-family: '")
		b.WriteString(QuoteCSSString(p.FontFamily))
		b.WriteString("'; }")
	}
	b.WriteString(" ")
	return b.String()
}

// InjectPageStyle inserts the page style block immediately before the first
// </head> tag, or prepends it when the document has none.
func InjectPageStyle(htmlContent string, style PageStyle) string {
	return insertBeforeHeadClose(htmlContent, "<style>"+sanitizeCSS(style.rules())+"</style>")
}

// InjectCSS inserts a <style> block before </head>, after <body>, or at the
// start of the document, in that order of preference.
// CSS content is sanitized so it cannot close the style element.
func InjectCSS(htmlContent, cssContent string) string {
	if cssContent == "" {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		if closeIdx := strings.Index(htmlContent[idx:], ">"); closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + styleBlock + htmlContent[insertPos:]
		}
	}

	return styleBlock + htmlContent
}

// QuoteCSSString escapes s for use inside a single- or double-quoted CSS string.
func QuoteCSSString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, `"`, `\"`, "\n", `\a `, "\r", "")
	return r.Replace(s)
}

func insertBeforeHeadClose(htmlContent, block string) string {
	if idx := strings.Index(strings.ToLower(htmlContent), "</head>"); idx != -1 {
		return htmlContent[:idx] + block + htmlContent[idx:]
	}
	return block + htmlContent
}

// formatPoints renders v without trailing zeros: 72 -> "72pt", 10.5 -> "10.5pt".
func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "pt"
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
