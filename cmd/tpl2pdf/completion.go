package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagFloat
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	TakesFiles  bool   // accepts file arguments
	FilePattern string // glob for file arguments
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"page-size": {Values: []string{"A4", "LETTER", "LEGAL", "A3"}},
	"engine":    {Values: []string{"rod", "chromedp"}},

	"config": {FileGlob: "*.yaml,*.yml"},
	"data":   {FileGlob: "*.yaml,*.yml,*.json"},

	"output":    {IsDir: true},
	"templates": {IsDir: true},
	"font-dir":  {IsDir: true},
}

// buildRenderFlagSet creates a FlagSet with all render command flags.
func buildRenderFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	addRenderFlags(fs, &renderFlags{})
	return fs
}

// buildSaveFlagSet creates a FlagSet with all save command flags.
func buildSaveFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	addCommonFlags(fs, &commonFlags{})
	return fs
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		case "float32", "float64":
			fd.Type = flagFloat
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			if len(meta.Values) > 0 {
				fd.Type = flagEnum
				fd.Values = meta.Values
			} else if meta.FileGlob != "" {
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			} else if meta.IsDir {
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSet.
func getCommands() []commandDef {
	return []commandDef{
		{
			Name:        "render",
			Desc:        "Render a template to PDF or HTML",
			Flags:       extractFlagsFromFlagSet(buildRenderFlagSet()),
			TakesFiles:  true,
			FilePattern: "*.html,*.htm,*.md,*.markdown",
		},
		{
			Name:       "save",
			Desc:       "Store a template in the template directory",
			Flags:      extractFlagsFromFlagSet(buildSaveFlagSet()),
			TakesFiles: true,
		},
		{
			Name: "doctor",
			Desc: "Check system configuration",
			Flags: []flagDef{
				{Long: "json", Type: flagBool, Desc: "output results as JSON"},
				{Long: "config", Short: "c", Type: flagFile, Desc: "config file name or path", FileGlob: "*.yaml,*.yml"},
			},
		},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var b strings.Builder
	switch shell {
	case ShellBash:
		generateBash(&b)
	case ShellZsh:
		generateZsh(&b)
	case ShellFish:
		generateFish(&b)
	case ShellPowerShell:
		generatePowerShell(&b)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func commandNames(cmds []commandDef) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

// globToExts turns "*.yaml,*.yml" into ["yaml", "yml"].
func globToExts(glob string) []string {
	var exts []string
	for _, g := range strings.Split(glob, ",") {
		if ext := strings.TrimPrefix(strings.TrimSpace(g), "*."); ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}

func generateBash(b *strings.Builder) {
	cmds := getCommands()

	b.WriteString("# bash completion for tpl2pdf\n\n")
	b.WriteString("_tpl2pdf_completions() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(b, "        COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n", commandNames(cmds))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n")
	b.WriteString("    case \"${cmd}\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(b, "    %s)\n", c.Name)
		if c.Name == "completion" {
			b.WriteString("        COMPREPLY=($(compgen -W \"bash zsh fish powershell\" -- \"${cur}\"))\n")
			b.WriteString("        return\n")
			b.WriteString("        ;;\n")
			continue
		}
		if c.Name == "help" {
			fmt.Fprintf(b, "        COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n", commandNames(cmds))
			b.WriteString("        return\n")
			b.WriteString("        ;;\n")
			continue
		}

		var opts []string
		b.WriteString("        case \"${prev}\" in\n")
		for _, f := range c.Flags {
			names := "--" + f.Long
			opts = append(opts, "--"+f.Long)
			if f.Short != "" {
				names += "|-" + f.Short
				opts = append(opts, "-"+f.Short)
			}
			switch f.Type {
			case flagEnum:
				fmt.Fprintf(b, "            %s)\n                COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n                return\n                ;;\n",
					names, strings.Join(f.Values, " "))
			case flagFile:
				fmt.Fprintf(b, "            %s)\n                COMPREPLY=($(compgen -f -X '!*.@(%s)' -- \"${cur}\"))\n                return\n                ;;\n",
					names, strings.Join(globToExts(f.FileGlob), "|"))
			case flagDir:
				fmt.Fprintf(b, "            %s)\n                COMPREPLY=($(compgen -d -- \"${cur}\"))\n                return\n                ;;\n", names)
			}
		}
		b.WriteString("        esac\n")
		b.WriteString("        if [[ \"${cur}\" == -* ]]; then\n")
		fmt.Fprintf(b, "            COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n", strings.Join(opts, " "))
		if c.TakesFiles {
			b.WriteString("        else\n")
			b.WriteString("            COMPREPLY=($(compgen -f -- \"${cur}\"))\n")
		}
		b.WriteString("        fi\n")
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -F _tpl2pdf_completions tpl2pdf\n")
}

// zshEscape escapes characters with meaning inside _arguments specs.
func zshEscape(s string) string {
	r := strings.NewReplacer("'", "'\\''", "[", "\\[", "]", "\\]", ":", "\\:")
	return r.Replace(s)
}

func generateZsh(b *strings.Builder) {
	cmds := getCommands()

	b.WriteString("#compdef tpl2pdf\n\n")
	b.WriteString("_tpl2pdf() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${words[2]}\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(b, "    %s)\n", c.Name)
		switch c.Name {
		case "completion":
			b.WriteString("        _values 'shell' bash zsh fish powershell\n")
			b.WriteString("        ;;\n")
			continue
		case "help":
			b.WriteString("        _describe 'command' commands\n")
			b.WriteString("        ;;\n")
			continue
		}

		b.WriteString("        _arguments \\\n")
		for _, f := range c.Flags {
			action := ""
			switch f.Type {
			case flagEnum:
				action = ":value:(" + strings.Join(f.Values, " ") + ")"
			case flagFile:
				action = ":file:_files -g \"*.(" + strings.Join(globToExts(f.FileGlob), "|") + ")\""
			case flagDir:
				action = ":directory:_files -/"
			case flagString, flagInt, flagFloat:
				action = ":value:"
			}
			desc := zshEscape(f.Desc)
			if f.Short != "" {
				fmt.Fprintf(b, "            '(-%s --%s)'{-%s,--%s}'[%s]%s' \\\n", f.Short, f.Long, f.Short, f.Long, desc, action)
			} else {
				fmt.Fprintf(b, "            '--%s[%s]%s' \\\n", f.Long, desc, action)
			}
		}
		if c.TakesFiles {
			b.WriteString("            '*:file:_files'\n")
		} else {
			b.WriteString("            && return\n")
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("_tpl2pdf \"$@\"\n")
}

// fishEscape escapes single quotes for fish strings.
func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

func generateFish(b *strings.Builder) {
	cmds := getCommands()

	b.WriteString("# fish completion for tpl2pdf\n\n")
	b.WriteString("function __fish_tpl2pdf_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_tpl2pdf_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\n")
	b.WriteString("end\n\n")
	b.WriteString("complete -c tpl2pdf -f\n")

	for _, c := range cmds {
		fmt.Fprintf(b, "complete -c tpl2pdf -n '__fish_tpl2pdf_needs_command' -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	b.WriteString("complete -c tpl2pdf -n '__fish_tpl2pdf_using_command completion' -a 'bash zsh fish powershell'\n")
	fmt.Fprintf(b, "complete -c tpl2pdf -n '__fish_tpl2pdf_using_command help' -a '%s'\n", commandNames(cmds))

	for _, c := range cmds {
		if c.TakesFiles {
			fmt.Fprintf(b, "complete -c tpl2pdf -n '__fish_tpl2pdf_using_command %s' -F\n", c.Name)
		}
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c tpl2pdf -n '__fish_tpl2pdf_using_command %s' -l %s", c.Name, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch f.Type {
			case flagEnum:
				line += " -x -a '" + strings.Join(f.Values, " ") + "'"
			case flagFile:
				line += " -r -F"
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			case flagString, flagInt, flagFloat:
				line += " -x"
			}
			line += " -d '" + fishEscape(f.Desc) + "'"
			b.WriteString(line + "\n")
		}
	}
}

func generatePowerShell(b *strings.Builder) {
	cmds := getCommands()

	b.WriteString("# PowerShell completion for tpl2pdf\n\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName tpl2pdf -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	b.WriteString("    $elements = $commandAst.CommandElements | ForEach-Object { $_.ToString() }\n")
	b.WriteString("    $flags = @{\n")
	for _, c := range cmds {
		var opts []string
		for _, f := range c.Flags {
			opts = append(opts, "'--"+f.Long+"'")
			if f.Short != "" {
				opts = append(opts, "'-"+f.Short+"'")
			}
		}
		fmt.Fprintf(b, "        '%s' = @(%s)\n", c.Name, strings.Join(opts, ", "))
	}
	b.WriteString("    }\n\n")
	b.WriteString("    if ($elements.Count -le 1 -or ($elements.Count -eq 2 -and $wordToComplete)) {\n")
	fmt.Fprintf(b, "        $candidates = '%s' -split ' '\n", commandNames(cmds))
	b.WriteString("    } elseif ($elements[1] -eq 'completion') {\n")
	b.WriteString("        $candidates = 'bash', 'zsh', 'fish', 'powershell'\n")
	b.WriteString("    } elseif ($flags.ContainsKey($elements[1])) {\n")
	b.WriteString("        $candidates = $flags[$elements[1]]\n")
	b.WriteString("    } else {\n")
	b.WriteString("        $candidates = @()\n")
	b.WriteString("    }\n\n")
	b.WriteString("    $candidates | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tpl2pdf completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(tpl2pdf completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(tpl2pdf completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    tpl2pdf completion fish > ~/.config/fish/completions/tpl2pdf.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    tpl2pdf completion powershell | Out-String | Invoke-Expression")
}
