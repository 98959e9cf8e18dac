package main

import (
	"context"
	"errors"
	"os"

	tpl2pdf "github.com/firefly-oss/go-tpl2pdf"
	"github.com/firefly-oss/go-tpl2pdf/internal/config"
	"github.com/firefly-oss/go-tpl2pdf/internal/yamlutil"
)

// Exit codes for the tpl2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful render
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, validation or template errors
	ExitIO      = 3 // File or template not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, tpl2pdf.ErrRender) ||
		errors.Is(err, context.DeadlineExceeded) {
		return ExitBrowser
	}

	// Template errors keep their primary kind (exit 2), even when the cause
	// is a missing include.
	var tplErr *tpl2pdf.TemplateError
	if errors.As(err, &tplErr) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, tpl2pdf.ErrIO) ||
		errors.Is(err, tpl2pdf.ErrTemplateNotFound) ||
		errors.Is(err, ErrReadData) ||
		errors.Is(err, ErrOutputDir) ||
		errors.Is(err, ErrReadTemplate) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation/template errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnsupportedData) ||
		errors.Is(err, ErrParseData) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, yamlutil.ErrNotMapping) ||
		errors.Is(err, tpl2pdf.ErrConfiguration) ||
		errors.Is(err, tpl2pdf.ErrInvalidArgument) ||
		errors.Is(err, tpl2pdf.ErrTemplateSyntax) ||
		errors.Is(err, tpl2pdf.ErrTemplateEvaluation) {
		return ExitUsage
	}

	return ExitGeneral
}
