package tpl2pdf

import (
	"context"
	"fmt"
	"time"
)

// Engine prints a finished HTML document to PDF.
//
// The HTML handed to Render already carries the page style, @font-face rules
// and <base> element. Engines use opts only for the fallback paper size and
// margins; the document's @page rule takes precedence.
// Implementations must be safe for concurrent use.
type Engine interface {
	Render(ctx context.Context, html string, opts PDFOptions) ([]byte, error)
	Close() error
}

// Compile-time interface implementation checks.
var (
	_ Engine = (*RodEngine)(nil)
	_ Engine = (*ChromedpEngine)(nil)
)

// defaultTimeout bounds page load and printing when the context has no deadline.
const defaultTimeout = 30 * time.Second

// Engine names accepted by NewEngine.
const (
	EngineRod      = "rod"
	EngineChromedp = "chromedp"
)

// EngineConfig holds browser settings shared by both engines.
type EngineConfig struct {
	BrowserBin string        // Chrome executable; empty means auto-detect
	Timeout    time.Duration // page load and print timeout; 0 means 30s
	Args       []string      // extra Chrome flags, e.g. "--disable-gpu"
}

// NewEngine creates the engine named name ("rod" or "chromedp"; empty means
// "rod"). The browser is launched lazily on first render.
func NewEngine(name string, cfg EngineConfig) (Engine, error) {
	switch name {
	case "", EngineRod:
		return NewRodEngine(cfg), nil
	case EngineChromedp:
		return NewChromedpEngine(cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q (must be rod or chromedp)", ErrConfiguration, name)
	}
}

// effectiveTimeout returns the time left before ctx's deadline, or fallback
// when ctx has none. A passed deadline yields context.DeadlineExceeded.
func effectiveTimeout(ctx context.Context, fallback time.Duration) (time.Duration, error) {
	if deadline, ok := ctx.Deadline(); ok {
		timeout := time.Until(deadline)
		if timeout <= 0 {
			return 0, context.DeadlineExceeded
		}
		return timeout, nil
	}
	if fallback <= 0 {
		return defaultTimeout, nil
	}
	return fallback, nil
}

// paperInches returns paper size and margins converted to inches.
func paperInches(opts PDFOptions) (width, height, top, right, bottom, left float64) {
	width, height = opts.PageSize().inches()
	return width, height,
		opts.MarginTop() / pointsPerInch,
		opts.MarginRight() / pointsPerInch,
		opts.MarginBottom() / pointsPerInch,
		opts.MarginLeft() / pointsPerInch
}
