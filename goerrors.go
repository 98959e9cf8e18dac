package tpl2pdf

import (
	"context"
	"errors"

	errorslib "github.com/goliatone/go-errors"
)

// AsGoError maps an error from this package onto a categorized go-errors
// error, for hosts that report failures in a structured form.
// Returns nil for a nil error.
func AsGoError(err error) *errorslib.Error {
	if err == nil {
		return nil
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge
	}

	msg := err.Error()

	var tplErr *TemplateError
	if errors.As(err, &tplErr) {
		if errors.Is(tplErr.Kind(), ErrTemplateEvaluation) {
			return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("template_evaluation")
		}
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("template_syntax")
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("timeout")
	case errors.Is(err, context.Canceled):
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("canceled")
	case errors.Is(err, ErrTemplateNotFound):
		return errorslib.New(msg, errorslib.CategoryNotFound).WithTextCode("template_not_found")
	case errors.Is(err, ErrTemplateSyntax):
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("template_syntax")
	case errors.Is(err, ErrTemplateEvaluation):
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("template_evaluation")
	case errors.Is(err, ErrInvalidArgument):
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("invalid_argument")
	case errors.Is(err, ErrConfiguration):
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("configuration")
	case errors.Is(err, ErrIO):
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("io")
	case errors.Is(err, ErrRender):
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("render")
	default:
		return errorslib.New(msg, errorslib.CategoryInternal).WithTextCode("internal")
	}
}
