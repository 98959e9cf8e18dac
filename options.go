package tpl2pdf

import (
	"fmt"
	"math"
	"strings"

	"github.com/firefly-oss/go-tpl2pdf/internal/pipeline"
)

// PageSize names one of the fixed paper sizes.
type PageSize string

// Page size constants.
const (
	PageSizeA4     PageSize = "A4"
	PageSizeLetter PageSize = "LETTER"
	PageSizeLegal  PageSize = "LEGAL"
	PageSizeA3     PageSize = "A3"
)

// DefaultMargin is the margin applied to every side when none is set, in points.
const DefaultMargin = 36.0

// pointsPerInch converts CSS points to the inches Chrome's print API expects.
const pointsPerInch = 72.0

// ParsePageSize parses a page size name case-insensitively.
func ParsePageSize(s string) (PageSize, error) {
	size := PageSize(strings.ToUpper(strings.TrimSpace(s)))
	if !size.valid() {
		return "", fmt.Errorf("%w: %q (must be A4, LETTER, LEGAL or A3)", ErrInvalidPageSize, s)
	}
	return size, nil
}

func (s PageSize) valid() bool {
	switch s {
	case PageSizeA4, PageSizeLetter, PageSizeLegal, PageSizeA3:
		return true
	}
	return false
}

// inches returns the paper width and height in inches.
func (s PageSize) inches() (width, height float64) {
	switch s {
	case PageSizeLetter:
		return 8.5, 11
	case PageSizeLegal:
		return 8.5, 14
	case PageSizeA3:
		return 11.69, 16.54
	default:
		return 8.27, 11.69
	}
}

// PDFOptions describes page geometry, fonts and resource resolution for a
// PDF render. It is an immutable value: build one with NewPDFOptions or
// derive a variant with ToBuilder. The zero value renders with
// DefaultPDFOptions.
type PDFOptions struct {
	pageSize    PageSize
	top         float64
	right       float64
	bottom      float64
	left        float64
	fontDir     string
	defaultFont string
	baseURI     string
}

// DefaultPDFOptions returns A4 with 36pt margins, no fonts and no base URI.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		pageSize: PageSizeA4,
		top:      DefaultMargin,
		right:    DefaultMargin,
		bottom:   DefaultMargin,
		left:     DefaultMargin,
	}
}

// PageSize returns the paper size.
func (o PDFOptions) PageSize() PageSize { return o.pageSize }

// MarginTop returns the top margin in points.
func (o PDFOptions) MarginTop() float64 { return o.top }

// MarginRight returns the right margin in points.
func (o PDFOptions) MarginRight() float64 { return o.right }

// MarginBottom returns the bottom margin in points.
func (o PDFOptions) MarginBottom() float64 { return o.bottom }

// MarginLeft returns the left margin in points.
func (o PDFOptions) MarginLeft() float64 { return o.left }

// FontDir returns the directory scanned for .ttf and .otf files, or "".
func (o PDFOptions) FontDir() string { return o.fontDir }

// DefaultFont returns the font family bound to the document body, or "".
func (o PDFOptions) DefaultFont() string { return o.defaultFont }

// BaseURI returns the base for relative resource references, or "".
func (o PDFOptions) BaseURI() string { return o.baseURI }

// ToBuilder returns a builder initialized from o. Changes to the builder
// never affect o.
func (o PDFOptions) ToBuilder() *PDFOptionsBuilder {
	return &PDFOptionsBuilder{opts: o}
}

func (o PDFOptions) pageStyle() pipeline.PageStyle {
	return pipeline.PageStyle{
		Size:       string(o.pageSize),
		Top:        o.top,
		Right:      o.right,
		Bottom:     o.bottom,
		Left:       o.left,
		FontFamily: o.defaultFont,
	}
}

// resolveOptions returns defaults for nil and for the zero value. Every
// other PDFOptions comes from Build and is already valid.
func resolveOptions(opts *PDFOptions) PDFOptions {
	if opts == nil || *opts == (PDFOptions{}) {
		return DefaultPDFOptions()
	}
	return *opts
}

// PDFOptionsBuilder accumulates PDF options. Build validates and returns an
// independent PDFOptions value; the builder may be reused afterwards.
//
// A builder is not safe for concurrent use.
type PDFOptionsBuilder struct {
	opts PDFOptions
}

// NewPDFOptions returns a builder seeded with DefaultPDFOptions.
func NewPDFOptions() *PDFOptionsBuilder {
	return &PDFOptionsBuilder{opts: DefaultPDFOptions()}
}

// WithPageSize sets the paper size. Build rejects unknown sizes.
func (b *PDFOptionsBuilder) WithPageSize(size PageSize) *PDFOptionsBuilder {
	b.opts.pageSize = size
	return b
}

// WithMargins sets the four margins in points.
func (b *PDFOptionsBuilder) WithMargins(top, right, bottom, left float64) *PDFOptionsBuilder {
	b.opts.top, b.opts.right, b.opts.bottom, b.opts.left = top, right, bottom, left
	return b
}

// WithMargin sets every margin to m points.
func (b *PDFOptionsBuilder) WithMargin(m float64) *PDFOptionsBuilder {
	return b.WithMargins(m, m, m, m)
}

// WithMarginTop sets the top margin in points.
func (b *PDFOptionsBuilder) WithMarginTop(m float64) *PDFOptionsBuilder {
	b.opts.top = m
	return b
}

// WithMarginRight sets the right margin in points.
func (b *PDFOptionsBuilder) WithMarginRight(m float64) *PDFOptionsBuilder {
	b.opts.right = m
	return b
}

// WithMarginBottom sets the bottom margin in points.
func (b *PDFOptionsBuilder) WithMarginBottom(m float64) *PDFOptionsBuilder {
	b.opts.bottom = m
	return b
}

// WithMarginLeft sets the left margin in points.
func (b *PDFOptionsBuilder) WithMarginLeft(m float64) *PDFOptionsBuilder {
	b.opts.left = m
	return b
}

// WithFontDir sets the directory scanned for fonts to embed.
func (b *PDFOptionsBuilder) WithFontDir(dir string) *PDFOptionsBuilder {
	b.opts.fontDir = dir
	return b
}

// WithDefaultFont sets the font family applied to the document body.
func (b *PDFOptionsBuilder) WithDefaultFont(family string) *PDFOptionsBuilder {
	b.opts.defaultFont = family
	return b
}

// WithBaseURI sets the base for relative links and images.
func (b *PDFOptionsBuilder) WithBaseURI(uri string) *PDFOptionsBuilder {
	b.opts.baseURI = uri
	return b
}

// Build validates the accumulated options and returns them as a value.
func (b *PDFOptionsBuilder) Build() (PDFOptions, error) {
	o := b.opts
	if !o.pageSize.valid() {
		return PDFOptions{}, fmt.Errorf("%w: %q (must be A4, LETTER, LEGAL or A3)", ErrInvalidPageSize, o.pageSize)
	}

	margins := []struct {
		side  string
		value float64
	}{
		{"top", o.top},
		{"right", o.right},
		{"bottom", o.bottom},
		{"left", o.left},
	}
	for _, m := range margins {
		if m.value < 0 || math.IsNaN(m.value) || math.IsInf(m.value, 0) {
			return PDFOptions{}, fmt.Errorf("%w: %s margin %v (must be a non-negative number of points)", ErrInvalidMargin, m.side, m.value)
		}
	}

	o.fontDir = strings.TrimSpace(o.fontDir)
	o.defaultFont = strings.TrimSpace(o.defaultFont)
	o.baseURI = strings.TrimSpace(o.baseURI)
	return o, nil
}

// MustBuild is like Build but panics on invalid options.
func (b *PDFOptionsBuilder) MustBuild() PDFOptions {
	o, err := b.Build()
	if err != nil {
		panic(err)
	}
	return o
}
