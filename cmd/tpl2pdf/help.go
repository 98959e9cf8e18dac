package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tpl2pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render      Render a template to PDF or HTML")
	fmt.Fprintln(w, "  save        Store a template in the template directory")
	fmt.Fprintln(w, "  doctor      Check system configuration")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'tpl2pdf help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tpl2pdf render <template> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Expand a template against data files and print the result to PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  template    Template name (e.g. invoice.html), or a file path with -i")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -d, --data <path>         YAML or JSON data file (repeatable, one output each)")
	fmt.Fprintln(w, "  -i, --inline              Read the template from the file given as argument")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "      --html-only           Write expanded HTML instead of PDF")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --templates <dir>     Template directory searched after the built-in templates")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel renderers (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: A4, LETTER, LEGAL, A3")
	fmt.Fprintln(w, "      --margin <f>          Margin on every side in points")
	fmt.Fprintln(w, "      --margin-top <f>      Top margin in points")
	fmt.Fprintln(w, "      --margin-right <f>    Right margin in points")
	fmt.Fprintln(w, "      --margin-bottom <f>   Bottom margin in points")
	fmt.Fprintln(w, "      --margin-left <f>     Left margin in points")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fonts and Resources:")
	fmt.Fprintln(w, "      --font-dir <dir>      Directory of TrueType/OpenType fonts to embed")
	fmt.Fprintln(w, "      --default-font <s>    Font family applied to the document body")
	fmt.Fprintln(w, "      --base-uri <uri>      Base URI for relative links and images")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Engine:")
	fmt.Fprintln(w, "      --engine <s>          PDF engine: rod, chromedp")
	fmt.Fprintln(w, "  -t, --timeout <d>         Page load timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  tpl2pdf render invoice.html -d order.yaml")
	fmt.Fprintln(w, "  tpl2pdf render invoice.html -d a.json -d b.json -o out/")
	fmt.Fprintln(w, "  tpl2pdf render -i ./letter.md -d letter.yaml -o letter.pdf")
}

// printSaveUsage prints usage for the save command.
func printSaveUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tpl2pdf save <name> <file> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Store the contents of file as template name in the template directory.")
	fmt.Fprintln(w, "The saved template takes effect on the next render unless a built-in")
	fmt.Fprintln(w, "template of the same name shadows it.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --templates <dir>     Template directory (default: ./templates)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tpl2pdf doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, environment, template sources and fonts.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --json                Output results as JSON")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "save":
		printSaveUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: tpl2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: tpl2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
