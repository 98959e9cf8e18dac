package fonts

import (
	"encoding/base64"
	"strings"
)

// CSS renders one @font-face rule per registered face. Font data is inlined
// as base64 data URLs so the PDF does not depend on file access.
func (t *Table) CSS() string {
	var b strings.Builder
	for _, f := range t.Faces() {
		b.WriteString("@font-face { font-family: '")
		b.WriteString(quote(f.Family))
		b.WriteString("'; src: url(data:")
		b.WriteString(f.mimeType())
		b.WriteString(";base64,")
		b.WriteString(base64.StdEncoding.EncodeToString(f.Data))
		b.WriteString(") format('")
		b.WriteString(f.Format)
		b.WriteString("');")
		if f.Bold {
			b.WriteString(" font-weight: bold;")
		}
		if f.Italic {
			b.WriteString(" font-style: italic;")
		}
		b.WriteString(" }\n")
	}
	return b.String()
}

// Families returns the distinct family names in registration order.
func (t *Table) Families() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range t.Faces() {
		if !seen[f.Family] {
			seen[f.Family] = true
			out = append(out, f.Family)
		}
	}
	return out
}

func (f Face) mimeType() string {
	if f.Format == "opentype" {
		return "font/otf"
	}
	return "font/ttf"
}

func quote(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", "", "<", `\3c `).Replace(s)
}
