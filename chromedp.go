package tpl2pdf

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromedpEngine prints HTML with a shared headless Chrome driven by
// chromedp. Each render opens a new tab and loads the document with
// Page.setDocumentContent, so no temp file is written.
type ChromedpEngine struct {
	cfg EngineConfig

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromedpEngine creates a ChromedpEngine. The browser starts on first Render.
func NewChromedpEngine(cfg EngineConfig) *ChromedpEngine {
	cfg.Timeout = timeoutOrDefault(cfg.Timeout)
	return &ChromedpEngine{cfg: cfg}
}

// Render prints html to PDF bytes.
func (e *ChromedpEngine) Render(ctx context.Context, html string, opts PDFOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout, err := effectiveTimeout(ctx, e.cfg.Timeout)
	if err != nil {
		return nil, err
	}

	browserCtx := e.ensureBrowser()

	tabCtx, cancel := chromedp.NewContext(browserCtx)
	defer cancel()

	// Tab contexts derive from the browser, not from ctx; link cancellation.
	execCtx, cancelReq := context.WithTimeout(tabCtx, timeout)
	defer cancelReq()
	go func() {
		select {
		case <-ctx.Done():
			cancelReq()
		case <-execCtx.Done():
		}
	}()

	var pdf []byte
	err = chromedp.Run(execCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrPageLoad, err)
			}
			if err := page.SetDocumentContent(tree.Frame.ID, html).Do(ctx); err != nil {
				return fmt.Errorf("%w: %v", ErrPageLoad, err)
			}
			return nil
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = buildPrintToPDFParams(opts).Do(ctx)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrPDFGeneration, err)
			}
			return nil
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, ErrRender) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return pdf, nil
}

// Close releases Chrome if it has been started. A later Render starts a
// new browser.
func (e *ChromedpEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browserCancel != nil {
		e.browserCancel()
		e.browserCancel = nil
	}
	if e.allocCancel != nil {
		e.allocCancel()
		e.allocCancel = nil
	}
	e.browserCtx = nil
	return nil
}

// ensureBrowser returns the browser context, creating the allocator on
// first use. Chrome itself starts with the first tab.
func (e *ChromedpEngine) ensureBrowser() context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browserCtx != nil {
		return e.browserCtx
	}

	options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if e.cfg.BrowserBin != "" {
		options = append(options, chromedp.ExecPath(e.cfg.BrowserBin), chromedp.NoSandbox)
	}
	options = append(options, allocatorOptionsFromArgs(e.cfg.Args)...)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), options...)
	e.allocCancel = allocCancel
	e.browserCtx, e.browserCancel = chromedp.NewContext(allocCtx)
	return e.browserCtx
}

func buildPrintToPDFParams(opts PDFOptions) *page.PrintToPDFParams {
	width, height, top, right, bottom, left := paperInches(opts)
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithPreferCSSPageSize(true).
		WithPaperWidth(width).
		WithPaperHeight(height).
		WithMarginTop(top).
		WithMarginRight(right).
		WithMarginBottom(bottom).
		WithMarginLeft(left)
}

func allocatorOptionsFromArgs(args []string) []chromedp.ExecAllocatorOption {
	options := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		name, value, ok := parseFlag(arg)
		if !ok {
			continue
		}
		if value == "" {
			options = append(options, chromedp.Flag(name, true))
			continue
		}
		options = append(options, chromedp.Flag(name, value))
	}
	return options
}
