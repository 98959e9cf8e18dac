package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// BaseHref converts a base URI option into an href usable in a <base> tag.
// URLs with a scheme are returned as-is; anything else is treated as a local
// directory and converted to a file:// URL ending in a slash.
func BaseHref(baseURI string) (string, error) {
	if u, err := url.Parse(baseURI); err == nil && len(u.Scheme) > 1 {
		return baseURI, nil
	}

	absPath, err := filepath.Abs(baseURI)
	if err != nil {
		return "", err
	}
	href := pathToFileURL(absPath)
	if !strings.HasSuffix(href, "/") {
		href += "/"
	}
	return href, nil
}

// InjectBaseURL adds <base href> so relative resources resolve against href.
// Documents that already declare a <base> element are returned unchanged.
// The tag goes right after <head>, else after <html>, else at the start.
func InjectBaseURL(htmlContent, href string) string {
	if href == "" {
		return htmlContent
	}

	headEnd, htmlEnd, hasBase := scanHead(htmlContent)
	if hasBase {
		return htmlContent
	}

	tag := `<base href="` + html.EscapeString(href) + `" />`
	switch {
	case headEnd >= 0:
		return htmlContent[:headEnd] + tag + htmlContent[headEnd:]
	case htmlEnd >= 0:
		return htmlContent[:htmlEnd] + "<head>" + tag + "</head>" + htmlContent[htmlEnd:]
	default:
		return tag + htmlContent
	}
}

// scanHead tokenizes the document prologue up to <body> and reports the byte
// offsets just past the <head> and <html> start tags (-1 when absent) and
// whether a <base> element is present.
func scanHead(htmlContent string) (headEnd, htmlEnd int, hasBase bool) {
	headEnd, htmlEnd = -1, -1
	z := html.NewTokenizer(strings.NewReader(htmlContent))
	offset := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return headEnd, htmlEnd, false
		}
		offset += len(z.Raw())

		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		name, _ := z.TagName()
		switch string(name) {
		case "base":
			return headEnd, htmlEnd, true
		case "head":
			if headEnd == -1 {
				headEnd = offset
			}
		case "html":
			if htmlEnd == -1 {
				htmlEnd = offset
			}
		case "body":
			return headEnd, htmlEnd, false
		}
	}
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}
