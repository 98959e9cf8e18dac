package pipeline

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestInjectBaseURL(t *testing.T) {
	t.Parallel()

	const href = "https://cdn.example.com/assets/"
	const tag = `<base href="https://cdn.example.com/assets/" />`

	tests := []struct {
		name  string
		input string
		href  string
		want  string
	}{
		{
			name:  "empty href unchanged",
			input: "<html><head></head></html>",
			href:  "",
			want:  "<html><head></head></html>",
		},
		{
			name:  "after head",
			input: "<html><head><title>t</title></head><body></body></html>",
			href:  href,
			want:  "<html><head>" + tag + "<title>t</title></head><body></body></html>",
		},
		{
			name:  "head with attributes",
			input: `<html><HEAD lang="en"></HEAD></html>`,
			href:  href,
			want:  `<html><HEAD lang="en">` + tag + `</HEAD></html>`,
		},
		{
			name:  "xhtml prolog and doctype",
			input: EnsureXHTML("<p>x</p>"),
			href:  href,
			want:  strings.Replace(EnsureXHTML("<p>x</p>"), "<head>", "<head>"+tag, 1),
		},
		{
			name:  "html without head",
			input: "<html><body>x</body></html>",
			href:  href,
			want:  "<html><head>" + tag + "</head><body>x</body></html>",
		},
		{
			name:  "fragment",
			input: "<p>x</p>",
			href:  href,
			want:  tag + "<p>x</p>",
		},
		{
			name:  "existing base kept",
			input: `<html><head><base href="/other/"></head></html>`,
			href:  href,
			want:  `<html><head><base href="/other/"></head></html>`,
		},
		{
			name:  "base in body ignored",
			input: `<html><head></head><body><base href="/x/"></body></html>`,
			href:  href,
			want:  `<html><head>` + tag + `</head><body><base href="/x/"></body></html>`,
		},
		{
			name:  "href is escaped",
			input: "<p/>",
			href:  `https://x.test/?a=1&b="2"`,
			want:  `<base href="https://x.test/?a=1&amp;b=&#34;2&#34;" /><p/>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := InjectBaseURL(tt.input, tt.href); got != tt.want {
				t.Errorf("InjectBaseURL() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestBaseHref(t *testing.T) {
	t.Parallel()

	t.Run("url passes through", func(t *testing.T) {
		t.Parallel()

		for _, in := range []string{"https://example.com/a/", "file:///srv/assets/", "http://localhost:8080"} {
			got, err := BaseHref(in)
			if err != nil {
				t.Fatalf("BaseHref(%q) error = %v", in, err)
			}
			if got != in {
				t.Errorf("BaseHref(%q) = %q, want unchanged", in, got)
			}
		}
	})

	t.Run("directory becomes file url", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		got, err := BaseHref(dir)
		if err != nil {
			t.Fatalf("BaseHref() error = %v", err)
		}
		if !strings.HasPrefix(got, "file://") || !strings.HasSuffix(got, "/") {
			t.Errorf("BaseHref(%q) = %q, want file:// URL ending in /", dir, got)
		}
		if runtime.GOOS != "windows" && !strings.Contains(got, filepath.ToSlash(dir)) {
			t.Errorf("BaseHref(%q) = %q, want path preserved", dir, got)
		}
	})
}
