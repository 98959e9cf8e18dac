package expand

import (
	"fmt"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/firefly-oss/go-tpl2pdf/internal/dateutil"
)

// now is replaced in tests.
var now = time.Now

// filterStrict fails evaluation when its input is undefined.
// The parameter names the expression for the error message.
func filterStrict(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in == nil || in.IsNil() {
		expr := "value"
		if param != nil && !param.IsNil() {
			expr = param.String()
		}
		return nil, &pongo2.Error{
			Sender:    "filter:strict",
			OrigError: fmt.Errorf("%w: %s", ErrUndefined, expr),
		}
	}
	return in, nil
}

// filterDateFmt formats a date with dateutil tokens or presets:
//
//	{{ issued|datefmt:"DD/MM/YYYY" }}
//	{{ "today"|datefmt:"long" }}
//
// Undefined input renders as an empty string.
func filterDateFmt(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in == nil || in.IsNil() {
		return pongo2.AsValue(""), nil
	}

	t, err := dateutil.Coerce(in.Interface(), now())
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:datefmt", OrigError: err}
	}

	format := ""
	if param != nil && !param.IsNil() {
		format = param.String()
	}
	s, err := dateutil.Format(t, format)
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:datefmt", OrigError: err}
	}
	return pongo2.AsValue(s), nil
}
