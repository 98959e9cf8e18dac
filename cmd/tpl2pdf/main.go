package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	tpl2pdf "github.com/firefly-oss/go-tpl2pdf"
	"github.com/firefly-oss/go-tpl2pdf/internal/config"
	"github.com/firefly-oss/go-tpl2pdf/internal/hints"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// commands lists the CLI subcommands.
var commands = []string{"render", "save", "doctor", "completion", "version", "help"}

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if slices.Contains(os.Args[1:], "-v") || slices.Contains(os.Args[1:], "--verbose") {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches the subcommand in args[1] and returns the exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "version":
		fmt.Fprintf(env.Stdout, "tpl2pdf %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		runHelp(rest, env)
		return ExitSuccess
	case "doctor":
		return runDoctorCmd(rest, env)
	}

	if !isCommand(cmd) {
		fmt.Fprintf(env.Stderr, "unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	var err error
	switch cmd {
	case "render":
		err = runRender(ctx, rest, env)
	case "save":
		err = runSave(rest, env)
	case "completion":
		err = runCompletion(rest, env)
	}

	if err != nil {
		reportError(env, err)
	}
	return exitCodeFor(err)
}

// isCommand reports whether s names a subcommand. Matching is case sensitive.
func isCommand(s string) bool {
	return slices.Contains(commands, s)
}

// reportError prints err with its category code and any hint.
// Per-render failures were already printed with the results.
func reportError(env *Environment, err error) {
	var batch *batchError
	if errors.As(err, &batch) {
		if batch.total > 1 {
			fmt.Fprintf(env.Stderr, "error: %v\n", err)
		}
		return
	}

	prefix := "error"
	if code := tpl2pdf.AsGoError(err).TextCode; code != "" && code != "internal" {
		prefix = "error [" + code + "]"
	}

	hint := hintFor(err, nil)
	var cfgErr *configError
	if errors.As(err, &cfgErr) && errors.Is(err, config.ErrConfigNotFound) {
		hint = hints.ForConfigNotFound(config.SearchPaths(cfgErr.name))
	}

	fmt.Fprintf(env.Stderr, "%s: %v%s\n", prefix, err, hint)
}
