// Package tpl2pdf renders templates to HTML and prints HTML to PDF using
// headless Chrome.
//
// # Quick Start
//
// Create a renderer, render a template, and close when done:
//
//	r, err := tpl2pdf.NewRenderer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	err = r.RenderTemplateToPDFFile(ctx, "invoice.html", map[string]any{
//	    "number":   "2024-001",
//	    "customer": map[string]any{"name": "ACME"},
//	}, "invoice.pdf", nil)
//
// # Rendering Pipeline
//
// A PDF render runs these stages:
//
//  1. Template resolution through the template chain (RenderTemplate* only)
//  2. Expansion with pongo2 ({{ }}, {% %} and the strict ${expr} shorthand)
//  3. Markdown conversion for templates named *.md or *.markdown
//  4. XHTML canonicalization (EnsureXHTML)
//  5. Page style injection: @page size and margins, default font
//  6. Font embedding from PDFOptions.FontDir as @font-face data URLs
//  7. <base> injection from PDFOptions.BaseURI
//  8. PDF printing by the Engine (go-rod by default, or chromedp)
//
// # Templates
//
// Templates use Django syntax. ${expr} is a strict interpolation: it fails
// with ErrTemplateEvaluation when the value is undefined, where {{ expr }}
// renders nothing. Two filters are added: datefmt ({{ d|datefmt:"long" }})
// and strict.
//
// By default templates resolve from the built-in set, then ./templates.
// Use WithTemplateDir for a single directory, or WithTemplateChain for an
// embedded filesystem backed by a directory:
//
//	//go:embed templates
//	var templates embed.FS
//
//	r, err := tpl2pdf.NewRenderer(
//	    tpl2pdf.WithTemplateChain(templates, "templates", "/var/lib/app/templates"),
//	)
//
// # Page Options
//
// PDFOptions is immutable; build it with NewPDFOptions:
//
//	opts, err := tpl2pdf.NewPDFOptions().
//	    WithPageSize(tpl2pdf.PageSizeLetter).
//	    WithMargin(72).
//	    WithFontDir("./fonts").
//	    WithDefaultFont("Inter").
//	    Build()
//
// Margins are in points. A nil *PDFOptions means DefaultPDFOptions: A4 with
// 36pt margins.
//
// # Parallel Processing
//
// A Renderer is safe for concurrent use. For batch work with several
// browsers, use RendererPool:
//
//	pool := tpl2pdf.NewRendererPool(4, nil)
//	defer pool.Close()
//
//	r, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(r)
//
// # Error Handling
//
// Every error matches one kind with errors.Is: ErrConfiguration,
// ErrTemplateNotFound, ErrTemplateSyntax, ErrTemplateEvaluation,
// ErrInvalidArgument, ErrIO or ErrRender. Template failures are
// *TemplateError values carrying the template name and position:
//
//	var tplErr *tpl2pdf.TemplateError
//	if errors.As(err, &tplErr) {
//	    fmt.Printf("%s:%d: %v\n", tplErr.Name, tplErr.Line, tplErr.Err)
//	}
//
// AsGoError maps any error to a categorized go-errors value.
//
// # Requirements
//
// Chrome or Chromium must be available. Rod downloads Chromium on first run
// if none is found; set ROD_BROWSER_BIN to use an installed browser.
package tpl2pdf
