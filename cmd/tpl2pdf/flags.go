package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	templates string
	quiet     bool
	verbose   bool
}

// marginFlags holds margin values and whether each was set explicitly.
// Zero is a valid margin, so presence is tracked separately.
type marginFlags struct {
	all                      float64
	top, right, bottom, left float64
	set                      map[string]bool
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	margins     marginFlags
	fontDir     string
	defaultFont string
	baseURI     string
}

// engineFlags holds browser engine flags.
type engineFlags struct {
	name    string
	timeout string
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common   commonFlags
	data     []string
	inline   bool
	output   string
	htmlOnly bool
	workers  int
	page     pageFlags
	engine   engineFlags
}

// saveFlags holds flags for the save command.
type saveFlags struct {
	common commonFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.templates, "templates", "", "template directory searched after the built-in templates")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing and debug logs")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: A4, LETTER, LEGAL, A3")
	fs.Float64Var(&f.margins.all, "margin", 0, "margin on every side in points")
	fs.Float64Var(&f.margins.top, "margin-top", 0, "top margin in points")
	fs.Float64Var(&f.margins.right, "margin-right", 0, "right margin in points")
	fs.Float64Var(&f.margins.bottom, "margin-bottom", 0, "bottom margin in points")
	fs.Float64Var(&f.margins.left, "margin-left", 0, "left margin in points")
	fs.StringVar(&f.fontDir, "font-dir", "", "directory of TrueType/OpenType fonts to embed")
	fs.StringVar(&f.defaultFont, "default-font", "", "font family applied to the document body")
	fs.StringVar(&f.baseURI, "base-uri", "", "base URI for relative links and images")
}

// addEngineFlags adds browser engine flags to a FlagSet.
func addEngineFlags(fs *flag.FlagSet, f *engineFlags) {
	fs.StringVar(&f.name, "engine", "", "PDF engine: rod, chromedp")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "page load timeout (e.g., 30s, 2m)")
}

// addRenderFlags registers every render flag on fs.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringArrayVarP(&f.data, "data", "d", nil, "YAML or JSON data file (repeatable, one output each)")
	fs.BoolVarP(&f.inline, "inline", "i", false, "treat the argument as a template file path")
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "write expanded HTML instead of PDF")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel renderers (0 = auto)")

	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)
	addEngineFlags(fs, &f.engine)
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, usage io.Writer) (*renderFlags, []string, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &renderFlags{}
	addRenderFlags(fs, f)

	fs.Usage = func() { printRenderUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	f.page.margins.set = map[string]bool{}
	for _, name := range []string{"margin", "margin-top", "margin-right", "margin-bottom", "margin-left"} {
		if fs.Changed(name) {
			f.page.margins.set[name] = true
		}
	}

	return f, fs.Args(), nil
}

// parseSaveFlags parses save command flags and returns positional args.
func parseSaveFlags(args []string, usage io.Writer) (*saveFlags, []string, error) {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &saveFlags{}

	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printSaveUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
