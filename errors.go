package tpl2pdf

import (
	"errors"
	"fmt"

	"github.com/firefly-oss/go-tpl2pdf/internal/expand"
	"github.com/firefly-oss/go-tpl2pdf/internal/source"
)

// Error kinds. Every error returned by this package matches one of these
// with errors.Is. A *TemplateError may match a second kind through its
// cause, such as ErrTemplateNotFound for a missing include; its Kind is the
// primary one.
var (
	ErrConfiguration      = errors.New("invalid configuration")
	ErrTemplateNotFound   = errors.New("template not found")
	ErrTemplateSyntax     = errors.New("template syntax error")
	ErrTemplateEvaluation = errors.New("template evaluation failed")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrIO                 = errors.New("I/O error")
	ErrRender             = errors.New("PDF rendering failed")
)

// Argument validation errors. All match ErrInvalidArgument.
var (
	ErrEmptyHTML           = fmt.Errorf("%w: HTML content is empty", ErrInvalidArgument)
	ErrEmptyTemplate       = fmt.Errorf("%w: template content cannot be null or empty", ErrInvalidArgument)
	ErrInvalidTemplateName = fmt.Errorf("%w: invalid template name", ErrInvalidArgument)
	ErrInvalidPageSize     = fmt.Errorf("%w: invalid page size", ErrInvalidArgument)
	ErrInvalidMargin       = fmt.Errorf("%w: invalid margin", ErrInvalidArgument)
	ErrNilWriter           = fmt.Errorf("%w: output writer is nil", ErrInvalidArgument)
	ErrEmptyOutputPath     = fmt.Errorf("%w: output path is empty", ErrInvalidArgument)
)

// Rendering errors. All match ErrRender.
var (
	ErrBrowserConnect = fmt.Errorf("%w: failed to connect to browser", ErrRender)
	ErrPageCreate     = fmt.Errorf("%w: failed to create browser page", ErrRender)
	ErrPageLoad       = fmt.Errorf("%w: failed to load page", ErrRender)
	ErrPDFGeneration  = fmt.Errorf("%w: PDF generation failed", ErrRender)
	ErrNotPDF         = fmt.Errorf("%w: engine output is not a PDF document", ErrRender)
)

// ErrUndefinedValue indicates a ${} interpolation referenced a missing value.
// It is reported inside a TemplateError of kind ErrTemplateEvaluation.
var ErrUndefinedValue = errors.New("undefined value")

// TemplateError reports a template that failed to parse or evaluate.
// errors.Is matches ErrTemplateSyntax or ErrTemplateEvaluation, and the
// underlying cause.
type TemplateError struct {
	Name   string // template in which the failure occurred
	Line   int    // 1-based; 0 when unknown
	Column int    // 1-based; 0 when unknown
	Err    error

	kind error
}

func (e *TemplateError) Error() string {
	pos := ""
	if e.Line > 0 {
		pos = fmt.Sprintf(" (line %d", e.Line)
		if e.Column > 0 {
			pos += fmt.Sprintf(", column %d", e.Column)
		}
		pos += ")"
	}
	return fmt.Sprintf("%v: %s%s: %v", e.kind, e.Name, pos, e.Err)
}

// Kind returns ErrTemplateSyntax or ErrTemplateEvaluation.
func (e *TemplateError) Kind() error {
	return e.kind
}

func (e *TemplateError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.Err}
}

// convertSourceError maps internal template source errors to public errors.
func convertSourceError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, source.ErrTemplateNotFound):
		return wrapError(ErrTemplateNotFound, err)
	case errors.Is(err, source.ErrInvalidName), errors.Is(err, source.ErrPathTraversal):
		return wrapError(ErrInvalidTemplateName, err)
	case errors.Is(err, source.ErrInvalidRoot):
		return wrapError(ErrConfiguration, err)
	case errors.Is(err, source.ErrTemplateRead), errors.Is(err, source.ErrTemplateWrite):
		return wrapError(ErrIO, err)
	default:
		return err
	}
}

// convertExpandError maps expansion failures to *TemplateError and passes
// source errors through convertSourceError.
func convertExpandError(err error) error {
	var e *expand.Error
	if !errors.As(err, &e) {
		return convertSourceError(err)
	}

	kind := ErrTemplateSyntax
	if errors.Is(e.Kind, expand.ErrEvaluation) {
		kind = ErrTemplateEvaluation
	}

	cause := e.Err
	if errors.Is(cause, expand.ErrUndefined) {
		cause = wrapError(ErrUndefinedValue, cause)
	} else {
		cause = convertSourceError(cause)
	}

	return &TemplateError{
		Name:   e.Name,
		Line:   e.Line,
		Column: e.Column,
		Err:    cause,
		kind:   kind,
	}
}

// wrapError creates an error that reports the original message and matches
// the public sentinel with errors.Is.
func wrapError(sentinel, original error) error {
	return &wrappedError{sentinel: sentinel, original: original}
}

type wrappedError struct {
	sentinel error
	original error
}

func (e *wrappedError) Error() string {
	return e.original.Error()
}

// Unwrap returns the public sentinel. Internal errors are not exposed since
// they live in internal/ packages.
func (e *wrappedError) Unwrap() error {
	return e.sentinel
}
