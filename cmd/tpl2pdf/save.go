package main

import (
	"errors"
	"fmt"
	"os"

	tpl2pdf "github.com/firefly-oss/go-tpl2pdf"
	flag "github.com/spf13/pflag"
)

// runSave stores a template file under the filesystem template directory.
//
//	tpl2pdf save <name> <file>
func runSave(args []string, env *Environment) error {
	flags, positional, err := parseSaveFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if len(positional) != 2 {
		printSaveUsage(env.Stderr)
		return fmt.Errorf("%w: save takes a template name and a file, got %d arguments", ErrUsage, len(positional))
	}
	name, path := positional[0], positional[1]

	envCfg := loadEnvConfig(env.Getenv)
	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeCommonFlags(&flags.common, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	content, err := os.ReadFile(path) // #nosec G304 -- user-provided template path
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadTemplate, err)
	}

	logger := newStderrLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	opts := append([]tpl2pdf.Option{tpl2pdf.WithLogger(logger)}, templateOptions(cfg.Templates)...)

	// The engine starts Chrome lazily, so saving never launches a browser.
	r, err := tpl2pdf.NewRenderer(opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.SaveTemplate(string(content), name); err != nil {
		return err
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Saved %s\n", name)
	}
	return nil
}
