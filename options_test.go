package tpl2pdf

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestDefaultPDFOptions(t *testing.T) {
	t.Parallel()

	o := DefaultPDFOptions()

	if o.PageSize() != PageSizeA4 {
		t.Errorf("PageSize() = %q, want %q", o.PageSize(), PageSizeA4)
	}
	for side, got := range map[string]float64{
		"top":    o.MarginTop(),
		"right":  o.MarginRight(),
		"bottom": o.MarginBottom(),
		"left":   o.MarginLeft(),
	} {
		if got != DefaultMargin {
			t.Errorf("%s margin = %v, want %v", side, got, DefaultMargin)
		}
	}
	if o.FontDir() != "" || o.DefaultFont() != "" || o.BaseURI() != "" {
		t.Errorf("expected no fonts or base URI, got %+v", o)
	}
}

func TestParsePageSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    PageSize
		wantErr bool
	}{
		{"A4", PageSizeA4, false},
		{"a4", PageSizeA4, false},
		{" letter ", PageSizeLetter, false},
		{"Legal", PageSizeLegal, false},
		{"a3", PageSizeA3, false},
		{"a5", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParsePageSize(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPageSize) || !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("ParsePageSize(%q) error = %v, want ErrInvalidPageSize", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePageSize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePageSize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPDFOptionsBuilder_Build(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		builder func() *PDFOptionsBuilder
		check   func(t *testing.T, o PDFOptions)
		wantErr error
	}{
		{
			name: "all fields",
			builder: func() *PDFOptionsBuilder {
				return NewPDFOptions().
					WithPageSize(PageSizeLegal).
					WithMargins(10, 20, 30, 40).
					WithFontDir(" ./fonts ").
					WithDefaultFont("Inter").
					WithBaseURI("https://example.com/")
			},
			check: func(t *testing.T, o PDFOptions) {
				if o.PageSize() != PageSizeLegal {
					t.Errorf("PageSize() = %q", o.PageSize())
				}
				if o.MarginTop() != 10 || o.MarginRight() != 20 || o.MarginBottom() != 30 || o.MarginLeft() != 40 {
					t.Errorf("margins = %v %v %v %v", o.MarginTop(), o.MarginRight(), o.MarginBottom(), o.MarginLeft())
				}
				if o.FontDir() != "./fonts" {
					t.Errorf("FontDir() = %q, want trimmed", o.FontDir())
				}
				if o.DefaultFont() != "Inter" || o.BaseURI() != "https://example.com/" {
					t.Errorf("DefaultFont() = %q, BaseURI() = %q", o.DefaultFont(), o.BaseURI())
				}
			},
		},
		{
			name: "individual margins",
			builder: func() *PDFOptionsBuilder {
				return NewPDFOptions().WithMargin(0).WithMarginTop(1).WithMarginRight(2).WithMarginBottom(3).WithMarginLeft(4.5)
			},
			check: func(t *testing.T, o PDFOptions) {
				if o.MarginTop() != 1 || o.MarginRight() != 2 || o.MarginBottom() != 3 || o.MarginLeft() != 4.5 {
					t.Errorf("margins = %v %v %v %v", o.MarginTop(), o.MarginRight(), o.MarginBottom(), o.MarginLeft())
				}
			},
		},
		{
			name:    "zero value page size",
			builder: func() *PDFOptionsBuilder { return NewPDFOptions().WithPageSize("") },
			wantErr: ErrInvalidPageSize,
		},
		{
			name:    "lowercase page size constant rejected",
			builder: func() *PDFOptionsBuilder { return NewPDFOptions().WithPageSize("a4") },
			wantErr: ErrInvalidPageSize,
		},
		{
			name:    "negative margin",
			builder: func() *PDFOptionsBuilder { return NewPDFOptions().WithMarginLeft(-1) },
			wantErr: ErrInvalidMargin,
		},
		{
			name:    "NaN margin",
			builder: func() *PDFOptionsBuilder { return NewPDFOptions().WithMarginTop(math.NaN()) },
			wantErr: ErrInvalidMargin,
		},
		{
			name:    "infinite margin",
			builder: func() *PDFOptionsBuilder { return NewPDFOptions().WithMargin(math.Inf(1)) },
			wantErr: ErrInvalidMargin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o, err := tt.builder().Build()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Build() error = %v, want %v", err, tt.wantErr)
				}
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("Build() error = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() unexpected error: %v", err)
			}
			tt.check(t, o)
		})
	}
}

func TestPDFOptionsBuilder_Independence(t *testing.T) {
	t.Parallel()

	b := NewPDFOptions().WithPageSize(PageSizeA3)
	first := b.MustBuild()

	b.WithPageSize(PageSizeLetter).WithMargin(1)
	second := b.MustBuild()

	if first.PageSize() != PageSizeA3 || first.MarginTop() != DefaultMargin {
		t.Errorf("first options changed after builder reuse: %+v", first)
	}
	if second.PageSize() != PageSizeLetter || second.MarginTop() != 1 {
		t.Errorf("second options = %+v", second)
	}

	derived := first.ToBuilder().WithDefaultFont("Serif").MustBuild()
	if first.DefaultFont() != "" {
		t.Errorf("ToBuilder() mutated source: DefaultFont() = %q", first.DefaultFont())
	}
	if derived.PageSize() != PageSizeA3 || derived.DefaultFont() != "Serif" {
		t.Errorf("derived options = %+v", derived)
	}
}

func TestPDFOptionsBuilder_MustBuildPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if err, ok := r.(error); !ok || !errors.Is(err, ErrInvalidMargin) {
			t.Errorf("panic value = %v, want ErrInvalidMargin", r)
		}
	}()
	NewPDFOptions().WithMargin(-5).MustBuild()
}

func TestInjectPageStyle(t *testing.T) {
	t.Parallel()

	letter := NewPDFOptions().WithPageSize(PageSizeLetter).WithMargin(72).MustBuild()
	withFont := NewPDFOptions().WithMargins(10.5, 0, 20, 0).WithDefaultFont("Open Sans").MustBuild()

	tests := []struct {
		name string
		html string
		opts *PDFOptions
		want string
	}{
		{
			name: "letter before head close",
			html: "<html><head><title>t</title></head><body></body></html>",
			opts: &letter,
			want: "<html><head><title>t</title><style> @page { size: letter; margin: 72pt 72pt 72pt 72pt; } </style></head><body></body></html>",
		},
		{
			name: "nil options use defaults and prepend without head",
			html: "<p>x</p>",
			want: "<style> @page { size: a4; margin: 36pt 36pt 36pt 36pt; } </style><p>x</p>",
		},
		{
			name: "zero value uses defaults",
			html: "<html><head></head></html>",
			opts: &PDFOptions{},
			want: "<html><head><style> @page { size: a4; margin: 36pt 36pt 36pt 36pt; } </style></head></html>",
		},
		{
			name: "default font and fractional margins",
			html: "<head></head>",
			opts: &withFont,
			want: "<head><style> @page { size: a4; margin: 10.5pt 0pt 20pt 0pt; } body { font-family: 'Open Sans'; } </style></head>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := InjectPageStyle(tt.html, tt.opts)
			if got != tt.want {
				t.Errorf("InjectPageStyle() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestEnsureXHTML(t *testing.T) {
	t.Parallel()

	once := EnsureXHTML("<p>Hello</p>")
	if !strings.HasPrefix(once, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Errorf("missing XML prolog: %q", once)
	}
	if n := strings.Count(strings.ToLower(once), "<!doctype"); n != 1 {
		t.Errorf("doctype count = %d, want 1", n)
	}
	if twice := EnsureXHTML(once); twice != once {
		t.Errorf("EnsureXHTML not idempotent:\n%s\n%s", once, twice)
	}

	doc := "  <!doctype html><html></html>"
	if got := EnsureXHTML(doc); got != doc {
		t.Errorf("EnsureXHTML(%q) = %q, want unchanged", doc, got)
	}
}

func TestPaperInches(t *testing.T) {
	t.Parallel()

	o := NewPDFOptions().WithPageSize(PageSizeLetter).WithMargins(72, 36, 18, 0).MustBuild()
	width, height, top, right, bottom, left := paperInches(o)

	if width != 8.5 || height != 11 {
		t.Errorf("paper = %vx%v, want 8.5x11", width, height)
	}
	if top != 1 || right != 0.5 || bottom != 0.25 || left != 0 {
		t.Errorf("margins = %v %v %v %v, want 1 0.5 0.25 0", top, right, bottom, left)
	}
}
