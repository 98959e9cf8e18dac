package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tpl2pdf "github.com/firefly-oss/go-tpl2pdf"
	"github.com/firefly-oss/go-tpl2pdf/internal/config"
	"github.com/firefly-oss/go-tpl2pdf/internal/fileutil"
	"github.com/firefly-oss/go-tpl2pdf/internal/hints"
	"github.com/firefly-oss/go-tpl2pdf/internal/yamlutil"
	flag "github.com/spf13/pflag"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrReadData           = errors.New("failed to read data file")
	ErrParseData          = errors.New("failed to parse data file")
	ErrReadTemplate       = errors.New("failed to read template file")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrOutputDir          = errors.New("failed to create output directory")
	ErrUnsupportedData    = errors.New("data file must have .yaml, .yml or .json extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidTimeout     = errors.New("invalid timeout")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// maxWorkers bounds --workers; each worker owns a browser.
const maxWorkers = 32

// renderJob is one output produced from the template and a data file.
type renderJob struct {
	DataPath   string // empty renders against an empty model
	OutputPath string
}

// renderResult holds the outcome of a single render.
type renderResult struct {
	DataPath   string
	OutputPath string
	Err        error
	Hint       string
	Duration   time.Duration
}

// renderParams groups settings shared across the batch.
type renderParams struct {
	template string // template name, or the inline file's base name
	inline   bool
	content  string // inline template text
	htmlOnly bool
	opts     tpl2pdf.PDFOptions
}

// rendererPool abstracts the Renderer pool for testability.
type rendererPool interface {
	Acquire(ctx context.Context) (*tpl2pdf.Renderer, error)
	Release(*tpl2pdf.Renderer)
	Size() int
}

var _ rendererPool = (*tpl2pdf.RendererPool)(nil)

// runRender orchestrates the render command.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if len(positional) != 1 {
		printRenderUsage(env.Stderr)
		return fmt.Errorf("%w: render takes exactly one template, got %d arguments", ErrUsage, len(positional))
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}
	if err := validateTimeout(flags.engine.timeout); err != nil {
		return err
	}

	envCfg := loadEnvConfig(env.Getenv)
	if !flags.common.quiet {
		warnUnknownEnvVars(env.Stderr, env.Environ())
	}

	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeRenderFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	opts, err := buildPDFOptions(cfg)
	if err != nil {
		return err
	}

	params := &renderParams{
		template: positional[0],
		inline:   flags.inline,
		htmlOnly: flags.htmlOnly,
		opts:     opts,
	}
	if flags.inline {
		content, err := os.ReadFile(positional[0]) // #nosec G304 -- user-provided template path
		if err != nil {
			return fmt.Errorf("%w: %w", ErrReadTemplate, err)
		}
		params.content = string(content)
		params.template = filepath.Base(positional[0])
	}

	ext := "pdf"
	if flags.htmlOnly {
		ext = "html"
	}
	jobs, err := planJobs(params.template, flags.data, flags.output, cfg.Output.DefaultDir, ext)
	if err != nil {
		return err
	}

	logger := newStderrLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	factory, err := rendererFactory(cfg, logger, env.NewEngine)
	if err != nil {
		return err
	}

	workers := flags.workers
	if workers == 0 {
		workers = envCfg.Workers
	}
	poolSize := min(tpl2pdf.ResolvePoolSize(workers), len(jobs))
	logger.Debugf("pool size: %d", poolSize)

	pool := tpl2pdf.NewRendererPool(poolSize, factory)
	defer pool.Close()

	results := renderBatch(ctx, pool, jobs, params)
	failed := printResults(results, flags.common, env)
	if failed > 0 {
		return newBatchError(results)
	}
	return nil
}

// validateWorkers rejects negative and excessive --workers values.
func validateWorkers(n int) error {
	if n < 0 || n > maxWorkers {
		return fmt.Errorf("%w: %d (must be 0-%d)", ErrInvalidWorkerCount, n, maxWorkers)
	}
	return nil
}

// validateTimeout checks a --timeout value before it reaches the config.
func validateTimeout(s string) error {
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, s, err)
	}
	if d <= 0 {
		return fmt.Errorf("%w: %q: must be positive", ErrInvalidTimeout, s)
	}
	return nil
}

// loadConfig loads the config named by the flag, then TPL2PDF_CONFIG.
// Neither set means an empty config.
func loadConfig(flagConfig string, env *envConfig) (*config.Config, error) {
	name := flagConfig
	if name == "" {
		name = env.ConfigPath
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		return nil, &configError{name: name, err: err}
	}
	return cfg, nil
}

// configError carries the config name so the not-found hint can list
// the searched paths.
type configError struct {
	name string
	err  error
}

func (e *configError) Error() string { return "loading config: " + e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// mergeRenderFlags merges CLI flags into cfg. CLI values override config values.
func mergeRenderFlags(flags *renderFlags, cfg *config.Config) {
	mergeCommonFlags(&flags.common, cfg)

	if flags.page.size != "" {
		cfg.PDF.PageSize = flags.page.size
	}
	m := flags.page.margins
	if m.set["margin"] {
		v := m.all
		cfg.PDF.Margin = &v
		cfg.PDF.Margins = config.MarginsConfig{}
	}
	sides := []struct {
		flag  string
		value float64
		dst   **float64
	}{
		{"margin-top", m.top, &cfg.PDF.Margins.Top},
		{"margin-right", m.right, &cfg.PDF.Margins.Right},
		{"margin-bottom", m.bottom, &cfg.PDF.Margins.Bottom},
		{"margin-left", m.left, &cfg.PDF.Margins.Left},
	}
	for _, s := range sides {
		if m.set[s.flag] {
			v := s.value
			*s.dst = &v
		}
	}
	if flags.page.fontDir != "" {
		cfg.PDF.FontDir = flags.page.fontDir
	}
	if flags.page.defaultFont != "" {
		cfg.PDF.DefaultFont = flags.page.defaultFont
	}
	if flags.page.baseURI != "" {
		cfg.PDF.BaseURI = flags.page.baseURI
	}
	if flags.engine.name != "" {
		cfg.Engine.Name = flags.engine.name
	}
	if flags.engine.timeout != "" {
		cfg.Engine.Timeout = flags.engine.timeout
	}
}

// mergeCommonFlags applies flags shared by render and save.
func mergeCommonFlags(flags *commonFlags, cfg *config.Config) {
	if flags.templates != "" {
		cfg.Templates.Dir = flags.templates
	}
}

// buildPDFOptions converts the merged page settings into PDFOptions.
// Per-side margins override the uniform margin.
func buildPDFOptions(cfg *config.Config) (tpl2pdf.PDFOptions, error) {
	b := tpl2pdf.NewPDFOptions()

	if cfg.PDF.PageSize != "" {
		size, err := tpl2pdf.ParsePageSize(cfg.PDF.PageSize)
		if err != nil {
			return tpl2pdf.PDFOptions{}, err
		}
		b.WithPageSize(size)
	}
	if cfg.PDF.Margin != nil {
		b.WithMargin(*cfg.PDF.Margin)
	}
	if m := cfg.PDF.Margins.Top; m != nil {
		b.WithMarginTop(*m)
	}
	if m := cfg.PDF.Margins.Right; m != nil {
		b.WithMarginRight(*m)
	}
	if m := cfg.PDF.Margins.Bottom; m != nil {
		b.WithMarginBottom(*m)
	}
	if m := cfg.PDF.Margins.Left; m != nil {
		b.WithMarginLeft(*m)
	}

	return b.WithFontDir(cfg.PDF.FontDir).
		WithDefaultFont(cfg.PDF.DefaultFont).
		WithBaseURI(cfg.PDF.BaseURI).
		Build()
}

// templateOptions selects the Renderer's template sources.
func templateOptions(t config.TemplatesConfig) []tpl2pdf.Option {
	switch {
	case t.Single:
		return []tpl2pdf.Option{tpl2pdf.WithTemplateDir(t.Dir)}
	case t.Dir != "" || t.EmbeddedPrefix != "":
		return []tpl2pdf.Option{tpl2pdf.WithTemplateChain(nil, t.EmbeddedPrefix, t.Dir)}
	default:
		return nil
	}
}

// rendererFactory returns the constructor the pool uses for each worker.
// Every Renderer gets its own engine and therefore its own browser.
func rendererFactory(cfg *config.Config, logger tpl2pdf.Logger, newEngine EngineFactory) (func() (*tpl2pdf.Renderer, error), error) {
	timeout, err := cfg.Engine.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	engineName := strings.ToLower(cfg.Engine.Name)
	engineCfg := tpl2pdf.EngineConfig{
		BrowserBin: cfg.Engine.BrowserBin,
		Timeout:    timeout,
		Args:       cfg.Engine.Args,
	}

	base := []tpl2pdf.Option{tpl2pdf.WithLogger(logger)}
	if timeout > 0 {
		base = append(base, tpl2pdf.WithTimeout(timeout))
	}
	base = append(base, templateOptions(cfg.Templates)...)

	return func() (*tpl2pdf.Renderer, error) {
		engine, err := newEngine(engineName, engineCfg)
		if err != nil {
			return nil, err
		}
		opts := append(base[:len(base):len(base)], tpl2pdf.WithEngine(engine))
		r, err := tpl2pdf.NewRenderer(opts...)
		if err != nil {
			_ = engine.Close()
			return nil, err
		}
		return r, nil
	}, nil
}

// planJobs maps data files to output paths.
//
// Rules:
//   - no data file: one render against an empty model
//   - -o naming a file (has an extension, not a directory): single output only
//   - -o naming a directory, or output.defaultDir: one file per data file there
//   - otherwise each output lands next to its data file
func planJobs(template string, dataFiles []string, output, defaultDir, ext string) ([]renderJob, error) {
	for _, d := range dataFiles {
		if !fileutil.IsDataFile(d) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedData, d)
		}
	}

	if output != "" && !isDirTarget(output) {
		if len(dataFiles) > 1 {
			return nil, fmt.Errorf("%w: -o must be a directory when rendering %d data files", ErrUsage, len(dataFiles))
		}
		job := renderJob{OutputPath: output}
		if len(dataFiles) == 1 {
			job.DataPath = dataFiles[0]
		}
		return []renderJob{job}, nil
	}

	dir := output
	if dir == "" {
		dir = defaultDir
	}

	if len(dataFiles) == 0 {
		if dir == "" {
			dir = "."
		}
		return []renderJob{{OutputPath: fileutil.OutputPath(filepath.Base(template), dir, ext)}}, nil
	}

	jobs := make([]renderJob, 0, len(dataFiles))
	seen := make(map[string]string, len(dataFiles))
	for _, d := range dataFiles {
		out := fileutil.OutputPath(d, dir, ext)
		if prev, ok := seen[out]; ok {
			return nil, fmt.Errorf("%w: %s and %s would both write %s", ErrUsage, prev, d, out)
		}
		seen[out] = d
		jobs = append(jobs, renderJob{DataPath: d, OutputPath: out})
	}
	return jobs, nil
}

// isDirTarget reports whether -o names a directory: an existing directory,
// a trailing separator, or a path without extension.
func isDirTarget(output string) bool {
	if fileutil.DirExists(output) {
		return true
	}
	if strings.HasSuffix(output, "/") || strings.HasSuffix(output, string(filepath.Separator)) {
		return true
	}
	return filepath.Ext(output) == ""
}

// loadModel reads a data file. An empty path yields an empty model.
func loadModel(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided data path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadData, err)
	}
	model, err := yamlutil.UnmarshalModel(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParseData, path, err)
	}
	return model, nil
}

// renderBatch renders jobs concurrently using the Renderer pool.
func renderBatch(ctx context.Context, pool rendererPool, jobs []renderJob, params *renderParams) []renderResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(jobs))

	results := make([]renderResult, len(jobs))
	var wg sync.WaitGroup
	queue := make(chan int, len(jobs))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := pool.Acquire(ctx)
			if err != nil {
				// Renderer creation failed, mark remaining jobs as failed
				for idx := range queue {
					results[idx] = renderResult{
						DataPath:   jobs[idx].DataPath,
						OutputPath: jobs[idx].OutputPath,
						Err:        err,
						Hint:       hintFor(err, nil),
					}
				}
				return
			}
			defer pool.Release(r)

			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = renderResult{
						DataPath:   jobs[idx].DataPath,
						OutputPath: jobs[idx].OutputPath,
						Err:        ctx.Err(),
					}
					continue
				}
				results[idx] = renderOne(ctx, r, jobs[idx], params)
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	return results
}

// renderOne renders a single job and returns the result.
func renderOne(ctx context.Context, r *tpl2pdf.Renderer, job renderJob, params *renderParams) renderResult {
	start := time.Now()
	result := renderResult{
		DataPath:   job.DataPath,
		OutputPath: job.OutputPath,
	}

	err := func() error {
		model, err := loadModel(job.DataPath)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(job.OutputPath), dirPermissions); err != nil {
			return fmt.Errorf("%w: %w", ErrOutputDir, err)
		}

		if params.htmlOnly {
			return writeHTML(ctx, r, job, model, params)
		}

		opts := params.opts
		if params.inline {
			return r.RenderTemplateStringToPDFFile(ctx, params.content, params.template, model, job.OutputPath, &opts)
		}
		return r.RenderTemplateToPDFFile(ctx, params.template, model, job.OutputPath, &opts)
	}()

	if err != nil {
		result.Err = err
		result.Hint = hintFor(err, r.TemplateSources())
	}
	result.Duration = time.Since(start)
	return result
}

// writeHTML writes the document exactly as it would be handed to the engine,
// minus embedded fonts.
func writeHTML(ctx context.Context, r *tpl2pdf.Renderer, job renderJob, model map[string]any, params *renderParams) error {
	var (
		html string
		err  error
	)
	if params.inline {
		html, err = r.RenderTemplateStringToHTML(ctx, params.content, params.template, model)
	} else {
		html, err = r.RenderTemplateToHTML(ctx, params.template, model)
	}
	if err != nil {
		return err
	}

	opts := params.opts
	doc := tpl2pdf.InjectPageStyle(tpl2pdf.EnsureXHTML(html), &opts)

	// #nosec G306 -- HTML files are meant to be readable
	if err := os.WriteFile(job.OutputPath, []byte(doc), filePermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, sources []string) string {
	switch {
	case errors.Is(err, tpl2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, tpl2pdf.ErrUndefinedValue):
		return hints.ForUndefinedValue()
	case errors.Is(err, tpl2pdf.ErrTemplateNotFound):
		return hints.ForTemplateNotFound(sources)
	case errors.Is(err, ErrOutputDir):
		return hints.ForOutputDirectory()
	default:
		return ""
	}
}

// resultSummary holds the count of succeeded and failed renders.
type resultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed renders.
func countResults(results []renderResult) resultSummary {
	var summary resultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs render results and returns the failure count.
func printResults(results []renderResult, common commonFlags, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.label(), r.Err, r.Hint)
			continue
		}

		if common.quiet {
			continue
		}

		if common.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.label(), r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !common.quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

// label names the input of a result for progress lines.
func (r renderResult) label() string {
	if r.DataPath == "" {
		return "(no data)"
	}
	return r.DataPath
}

// batchError reports failed renders. It unwraps to the first failure so
// exit codes reflect its kind.
type batchError struct {
	failed int
	total  int
	first  error
}

func newBatchError(results []renderResult) *batchError {
	e := &batchError{total: len(results)}
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		if e.first == nil {
			e.first = r.Err
		}
		e.failed++
	}
	return e
}

func (e *batchError) Error() string {
	if e.total == 1 {
		return e.first.Error()
	}
	return fmt.Sprintf("%d of %d renders failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error { return e.first }
