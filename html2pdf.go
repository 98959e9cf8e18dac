package tpl2pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/firefly-oss/go-tpl2pdf/internal/fileutil"
	"github.com/firefly-oss/go-tpl2pdf/internal/process"
)

// pageRenderer prints a local HTML file, so RodEngine can be tested without a browser.
type pageRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, opts PDFOptions) ([]byte, error)
	Close() error
}

var _ pageRenderer = (*rodRenderer)(nil)

// RodEngine prints HTML with headless Chrome driven by go-rod.
// Rod downloads Chromium on first run when no browser is found.
// The document is written to a temp file and loaded over file://, so
// relative file references resolve against the injected <base>.
type RodEngine struct {
	renderer pageRenderer
}

// NewRodEngine creates a RodEngine. The browser starts on first Render.
func NewRodEngine(cfg EngineConfig) *RodEngine {
	return &RodEngine{renderer: newRodRenderer(cfg)}
}

// Render prints html to PDF bytes.
func (e *RodEngine) Render(ctx context.Context, html string, opts PDFOptions) ([]byte, error) {
	tmpPath, cleanup, err := fileutil.WriteTempFile(html, "html")
	if err != nil {
		return nil, wrapError(ErrIO, err)
	}
	defer cleanup()

	return e.renderer.RenderFromFile(ctx, tmpPath, opts)
}

// Close stops the browser.
func (e *RodEngine) Close() error {
	if e.renderer != nil {
		return e.renderer.Close()
	}
	return nil
}

// rodRenderer owns one browser process. Pages are opened per call.
type rodRenderer struct {
	cfg EngineConfig

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func newRodRenderer(cfg EngineConfig) *rodRenderer {
	cfg.Timeout = timeoutOrDefault(cfg.Timeout)
	return &rodRenderer{cfg: cfg}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()

	// Pre-installed browser (Docker/containerized environments)
	bin := r.cfg.BrowserBin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || bin != "" {
		l = l.NoSandbox(true)
	}

	for _, arg := range r.cfg.Args {
		name, value, ok := parseFlag(arg)
		if !ok {
			continue
		}
		if value == "" {
			l = l.Set(flags.Flag(name))
		} else {
			l = l.Set(flags.Flag(name), value)
		}
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		killLauncher(l)
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	return browser, nil
}

// Close releases browser resources and kills the Chrome process tree.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		killLauncher(r.launcher)
		r.launcher = nil
	}
	return err
}

// killLauncher kills Chrome and its helper processes.
func killLauncher(l *launcher.Launcher) {
	// Best effort; l.Kill is the fallback.
	_ = process.KillProcessGroup(l.PID())
	l.Kill()
}

// RenderFromFile opens a local HTML file in headless Chrome and prints it.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, opts PDFOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	timeout, err := effectiveTimeout(ctx, r.cfg.Timeout)
	if err != nil {
		return nil, err
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.Context(ctx).PDF(buildPDFOptions(opts))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	return pdfBuf, nil
}

// buildPDFOptions maps page geometry to Chrome's print parameters.
// The @page rule injected into the document wins over these values.
func buildPDFOptions(opts PDFOptions) *proto.PagePrintToPDF {
	width, height, top, right, bottom, left := paperInches(opts)
	return &proto.PagePrintToPDF{
		PaperWidth:        floatPtr(width),
		PaperHeight:       floatPtr(height),
		MarginTop:         floatPtr(top),
		MarginRight:       floatPtr(right),
		MarginBottom:      floatPtr(bottom),
		MarginLeft:        floatPtr(left),
		PrintBackground:   true,
		PreferCSSPageSize: true,
	}
}

// parseFlag splits "--name=value" into its parts. Blank input is rejected.
func parseFlag(arg string) (name, value string, ok bool) {
	arg = strings.TrimPrefix(strings.TrimSpace(arg), "--")
	if arg == "" {
		return "", "", false
	}
	name, value, _ = strings.Cut(arg, "=")
	return name, value, name != ""
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// timeoutOrDefault returns d, or the default timeout when d is not positive.
func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	return d
}
