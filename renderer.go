package tpl2pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/firefly-oss/go-tpl2pdf/internal/expand"
	"github.com/firefly-oss/go-tpl2pdf/internal/fonts"
	"github.com/firefly-oss/go-tpl2pdf/internal/pipeline"
	"github.com/firefly-oss/go-tpl2pdf/internal/source"
)

// pdfMagic is the signature every PDF document starts with.
var pdfMagic = []byte("%PDF")

// inlineNamePrefix prefixes the generated name of unnamed inline templates.
const inlineNamePrefix = "inline-"

// Renderer expands templates into HTML and prints HTML to PDF.
// Create with NewRenderer and call Close when done.
//
// A Renderer is safe for concurrent use: its configuration is fixed at
// construction and every call keeps its own state.
type Renderer struct {
	sources sourceConfig
	timeout time.Duration
	logger  Logger

	chain    *source.Chain
	saver    templateSaver
	expander *expand.Expander
	markdown pipeline.HTMLConverter
	engine   Engine
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithEngine sets the PDF engine. The Renderer closes it on Close.
func WithEngine(e Engine) Option {
	return func(r *Renderer) {
		r.engine = e
	}
}

// WithTimeout sets the page load and print timeout of the default engine.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("tpl2pdf: WithTimeout duration must be positive")
	}
	return func(r *Renderer) {
		r.timeout = d
	}
}

// WithLogger sets the logger receiving warnings about degraded rendering.
func WithLogger(l Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRenderer creates a Renderer. Without template options it resolves
// built-in templates first, then ./templates. Without WithEngine it prints
// with a RodEngine that starts Chrome on first use.
//
// Returns ErrConfiguration when the template directory is unusable.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		timeout:  defaultTimeout,
		logger:   NopLogger{},
		markdown: pipeline.NewGoldmarkConverter(),
	}

	for _, opt := range opts {
		opt(r)
	}

	chain, saver, err := r.buildSources()
	if err != nil {
		return nil, err
	}
	r.chain = chain
	r.saver = saver
	r.expander = expand.New(chain)

	if r.engine == nil {
		r.engine = NewRodEngine(EngineConfig{Timeout: r.timeout})
	}

	return r, nil
}

// Close releases the PDF engine.
func (r *Renderer) Close() error {
	if r.engine != nil {
		return r.engine.Close()
	}
	return nil
}

// TemplateSources describes the template sources in lookup order.
func (r *Renderer) TemplateSources() []string {
	return r.chain.Names()
}

// RenderTemplateToHTML resolves name through the template chain and expands
// it against model. Names ending in .md or .markdown are converted from
// Markdown after expansion.
func (r *Renderer) RenderTemplateToHTML(ctx context.Context, name string, model map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	out, err := r.expander.ExpandNamed(name, model)
	if err != nil {
		return "", convertExpandError(err)
	}

	return r.postprocess(ctx, name, out)
}

// RenderTemplateStringToHTML expands inline template content against model.
// name only labels errors; a blank name gets a generated "inline-" name.
// {% include %} and {% extends %} still resolve through the template chain.
func (r *Renderer) RenderTemplateStringToHTML(ctx context.Context, content, name string, model map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyTemplate
	}

	name = inlineName(name)
	out, err := r.expander.ExpandString(name, content, model)
	if err != nil {
		return "", convertExpandError(err)
	}

	return r.postprocess(ctx, name, out)
}

// postprocess converts Markdown template output to HTML.
func (r *Renderer) postprocess(ctx context.Context, name, out string) (string, error) {
	if !pipeline.IsMarkdownName(name) {
		return out, nil
	}
	html, err := r.markdown.ToHTML(ctx, out)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &TemplateError{Name: name, Err: err, kind: ErrTemplateEvaluation}
	}
	return html, nil
}

// RenderHTMLToPDFBytes prints html to PDF. Markup without a doctype is
// wrapped in an XHTML document first. nil opts means DefaultPDFOptions.
func (r *Renderer) RenderHTMLToPDFBytes(ctx context.Context, html string, opts *PDFOptions) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, ErrEmptyHTML
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := resolveOptions(opts)

	doc := EnsureXHTML(html)
	doc = InjectPageStyle(doc, &o)
	doc = r.embedFonts(doc, o)

	doc, err := injectBase(doc, o.BaseURI())
	if err != nil {
		return nil, err
	}

	start := time.Now()
	pdf, err := r.engine.Render(ctx, doc, o)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(pdf, pdfMagic) {
		return nil, ErrNotPDF
	}
	r.logger.Debugf("rendered %d byte PDF in %s", len(pdf), time.Since(start).Round(time.Millisecond))

	return pdf, nil
}

// RenderHTMLToPDF prints html to PDF and writes it to w.
func (r *Renderer) RenderHTMLToPDF(ctx context.Context, html string, w io.Writer, opts *PDFOptions) error {
	if w == nil {
		return ErrNilWriter
	}
	pdf, err := r.RenderHTMLToPDFBytes(ctx, html, opts)
	if err != nil {
		return err
	}
	return writePDF(w, pdf)
}

// RenderTemplateToPDFBytes expands the named template and prints it.
func (r *Renderer) RenderTemplateToPDFBytes(ctx context.Context, name string, model map[string]any, opts *PDFOptions) ([]byte, error) {
	html, err := r.RenderTemplateToHTML(ctx, name, model)
	if err != nil {
		return nil, err
	}
	return r.RenderHTMLToPDFBytes(ctx, html, opts)
}

// RenderTemplateToPDF expands the named template, prints it and writes the
// PDF to w.
func (r *Renderer) RenderTemplateToPDF(ctx context.Context, name string, model map[string]any, w io.Writer, opts *PDFOptions) error {
	if w == nil {
		return ErrNilWriter
	}
	pdf, err := r.RenderTemplateToPDFBytes(ctx, name, model, opts)
	if err != nil {
		return err
	}
	return writePDF(w, pdf)
}

// RenderTemplateToPDFFile expands the named template, prints it and writes
// the PDF to path, replacing any existing file.
func (r *Renderer) RenderTemplateToPDFFile(ctx context.Context, name string, model map[string]any, path string, opts *PDFOptions) error {
	return writePDFFile(path, func(w io.Writer) error {
		return r.RenderTemplateToPDF(ctx, name, model, w, opts)
	})
}

// RenderTemplateStringToPDFBytes expands inline template content and prints it.
func (r *Renderer) RenderTemplateStringToPDFBytes(ctx context.Context, content, name string, model map[string]any, opts *PDFOptions) ([]byte, error) {
	html, err := r.RenderTemplateStringToHTML(ctx, content, name, model)
	if err != nil {
		return nil, err
	}
	return r.RenderHTMLToPDFBytes(ctx, html, opts)
}

// RenderTemplateStringToPDF expands inline template content, prints it and
// writes the PDF to w.
func (r *Renderer) RenderTemplateStringToPDF(ctx context.Context, content, name string, model map[string]any, w io.Writer, opts *PDFOptions) error {
	if w == nil {
		return ErrNilWriter
	}
	pdf, err := r.RenderTemplateStringToPDFBytes(ctx, content, name, model, opts)
	if err != nil {
		return err
	}
	return writePDF(w, pdf)
}

// RenderTemplateStringToPDFFile expands inline template content, prints it
// and writes the PDF to path, replacing any existing file.
func (r *Renderer) RenderTemplateStringToPDFFile(ctx context.Context, content, name string, model map[string]any, path string, opts *PDFOptions) error {
	return writePDFFile(path, func(w io.Writer) error {
		return r.RenderTemplateStringToPDF(ctx, content, name, model, w, opts)
	})
}

// SaveTemplate writes content as template name under the filesystem tier,
// creating the directory if needed. The next render sees the new content.
func (r *Renderer) SaveTemplate(content, name string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyTemplate
	}
	if r.saver == nil {
		return fmt.Errorf("%w: no writable template directory configured", ErrIO)
	}
	if err := r.saver.Save(name, content); err != nil {
		return convertSourceError(err)
	}
	r.logger.Infof("saved template %s", name)
	return nil
}

// embedFonts injects @font-face rules for every usable font in the
// configured font directory. Unusable fonts are logged and skipped.
func (r *Renderer) embedFonts(html string, opts PDFOptions) string {
	if opts.FontDir() == "" {
		return html
	}
	table := fonts.Scan(opts.FontDir(), r.logger)
	if table.Len() == 0 {
		r.logger.Warnf("no usable fonts in %s, using default fonts", opts.FontDir())
		return html
	}
	r.logger.Debugf("embedding %d font faces: %s", table.Len(), strings.Join(table.Families(), ", "))
	return pipeline.InjectCSS(html, table.CSS())
}

// injectBase adds a <base> element for baseURI unless the document has one.
func injectBase(html, baseURI string) (string, error) {
	if baseURI == "" {
		return html, nil
	}
	href, err := pipeline.BaseHref(baseURI)
	if err != nil {
		return "", fmt.Errorf("%w: base URI %q: %v", ErrInvalidArgument, baseURI, err)
	}
	return pipeline.InjectBaseURL(html, href), nil
}

// EnsureXHTML returns markup unchanged when it starts with a doctype,
// otherwise wraps it in a minimal XHTML 1.0 document with an XML prolog.
// It is idempotent.
func EnsureXHTML(markup string) string {
	return pipeline.EnsureXHTML(markup)
}

// InjectPageStyle inserts a <style> block declaring the page size and
// margins, and the default font when set, before the first </head>. The
// block is prepended when the document has no head. nil opts means
// DefaultPDFOptions.
func InjectPageStyle(html string, opts *PDFOptions) string {
	o := resolveOptions(opts)
	return pipeline.InjectPageStyle(html, o.pageStyle())
}

// inlineName returns name, or a unique time-ordered name when blank.
func inlineName(name string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	id, err := uuid.NewV7()
	if err != nil {
		return inlineNamePrefix + uuid.NewString()
	}
	return inlineNamePrefix + id.String()
}

func writePDF(w io.Writer, pdf []byte) error {
	if _, err := w.Write(pdf); err != nil {
		return fmt.Errorf("%w: writing PDF: %v", ErrIO, err)
	}
	return nil
}

// writePDFFile creates or truncates path and runs write against it. The
// file is always closed; on any failure it is removed.
func writePDFFile(path string, write func(io.Writer) error) (err error) {
	if strings.TrimSpace(path) == "" {
		return ErrEmptyOutputPath
	}

	f, err := os.Create(path) // #nosec G304 -- caller-chosen output path
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrIO, path, err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: closing %s: %v", ErrIO, path, closeErr)
		}
		if err != nil {
			if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				err = errors.Join(err, fmt.Errorf("%w: removing partial file: %v", ErrIO, rmErr))
			}
		}
	}()

	if err := write(f); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: flushing %s: %v", ErrIO, path, err)
	}
	return nil
}
