package expand

import (
	"errors"
	"fmt"
)

// Sentinel errors for template expansion.
var (
	// ErrSyntax indicates the template could not be parsed.
	ErrSyntax = errors.New("template syntax error")

	// ErrEvaluation indicates the template failed while producing output.
	ErrEvaluation = errors.New("template evaluation error")

	// ErrUndefined indicates a ${} interpolation referenced an undefined value.
	ErrUndefined = errors.New("undefined value")
)

// Error carries the template name and position of a parse or evaluation
// failure. errors.Is matches both Kind and the underlying cause.
type Error struct {
	Kind   error // ErrSyntax or ErrEvaluation
	Name   string
	Line   int
	Column int
	Err    error
}

func (e *Error) Error() string {
	pos := ""
	if e.Line > 0 {
		pos = fmt.Sprintf(" at line %d", e.Line)
		if e.Column > 0 {
			pos += fmt.Sprintf(", column %d", e.Column)
		}
	}
	return fmt.Sprintf("%v in %q%s: %v", e.Kind, e.Name, pos, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
