package expand

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// stringTemplateName is the file name pongo2 reports for FromString templates.
const stringTemplateName = "<string>"

// Source resolves template names for top-level templates, {% include %} and
// {% extends %}.
type Source interface {
	Load(name string) (string, error)
}

// Expander evaluates templates read from a Source.
// It holds no per-call state and is safe for concurrent use.
type Expander struct {
	src Source
}

// New creates an Expander reading templates from src.
func New(src Source) *Expander {
	registerFilters()
	return &Expander{src: src}
}

// ExpandNamed loads name from the source and evaluates it against model.
// Source errors (not found, invalid name, I/O) are returned unchanged.
func (e *Expander) ExpandNamed(name string, model map[string]any) (string, error) {
	content, err := e.src.Load(name)
	if err != nil {
		return "", err
	}
	return e.expand(name, content, model)
}

// ExpandString evaluates inline template content against model. The name is
// used in error messages and is not resolved.
func (e *Expander) ExpandString(name, content string, model map[string]any) (string, error) {
	return e.expand(name, content, model)
}

func (e *Expander) expand(name, content string, model map[string]any) (string, error) {
	rewritten, err := rewriteShorthand(content)
	if err != nil {
		return "", withName(err, name)
	}

	loader := &sourceLoader{src: e.src}
	set := pongo2.NewSet(name, loader)
	// ssi reads arbitrary files; templates only reach the source.
	_ = set.BanTag("ssi")

	tpl, err := set.FromString(rewritten)
	if err != nil {
		return "", convertError(ErrSyntax, name, err, loader.err)
	}

	ctx := pongo2.Context{}
	for k, v := range model {
		ctx[k] = v
	}

	var out strings.Builder
	if err := tpl.ExecuteWriter(ctx, &out); err != nil {
		return "", convertError(ErrEvaluation, name, err, loader.err)
	}
	return out.String(), nil
}

// sourceLoader adapts a Source to pongo2.TemplateLoader. Names are resolved
// relative to the source root, never to the including template.
type sourceLoader struct {
	src Source
	err error // first source or shorthand error, for diagnostics
}

func (l *sourceLoader) Abs(_, name string) string {
	return name
}

func (l *sourceLoader) Get(path string) (io.Reader, error) {
	content, err := l.src.Load(path)
	if err == nil {
		content, err = rewriteShorthand(content)
		err = withName(err, path)
	}
	if err != nil {
		if l.err == nil {
			l.err = err
		}
		return nil, err
	}
	return strings.NewReader(content), nil
}

// convertError maps a pongo2 failure onto *Error. cause, when set, is the
// error a nested template load produced and replaces pongo2's message.
func convertError(kind error, name string, err, cause error) error {
	var nested *Error
	if errors.As(cause, &nested) {
		return nested
	}

	out := &Error{Kind: kind, Name: name, Err: err}

	var perr *pongo2.Error
	if errors.As(err, &perr) {
		out.Line = perr.Line
		out.Column = perr.Column
		if perr.OrigError != nil {
			out.Err = perr.OrigError
		}
		if cause == nil && perr.Filename != "" && perr.Filename != stringTemplateName {
			out.Name = perr.Filename
		}
	}

	if cause != nil {
		out.Err = fmt.Errorf("%w (%v)", cause, out.Err)
	}
	return out
}

func withName(err error, name string) error {
	var e *Error
	if errors.As(err, &e) && e.Name == "" {
		e.Name = name
	}
	return err
}

var registerOnce sync.Once

// registerFilters adds the package filters to pongo2's global registry.
func registerFilters() {
	registerOnce.Do(func() {
		for name, fn := range map[string]pongo2.FilterFunction{
			"strict":  filterStrict,
			"datefmt": filterDateFmt,
		} {
			if !pongo2.FilterExists(name) {
				_ = pongo2.RegisterFilter(name, fn)
			}
		}
	})
}
