package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/firefly-oss/go-tpl2pdf/internal/config"
)

// envPrefix namespaces the environment variables read by the CLI.
const envPrefix = "TPL2PDF_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // TPL2PDF_CONFIG: config file name or path
	Templates  string        // TPL2PDF_TEMPLATES: template directory
	OutputDir  string        // TPL2PDF_OUTPUT_DIR: default output directory
	PageSize   string        // TPL2PDF_PAGE_SIZE: A4, LETTER, LEGAL, A3
	FontDir    string        // TPL2PDF_FONT_DIR: font directory
	BaseURI    string        // TPL2PDF_BASE_URI: base URI for relative resources
	Engine     string        // TPL2PDF_ENGINE: rod, chromedp
	Timeout    time.Duration // TPL2PDF_TIMEOUT: page load timeout
	Workers    int           // TPL2PDF_WORKERS: parallel renderers
}

// knownEnvVars lists valid TPL2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"TPL2PDF_CONFIG":     true,
	"TPL2PDF_TEMPLATES":  true,
	"TPL2PDF_OUTPUT_DIR": true,
	"TPL2PDF_PAGE_SIZE":  true,
	"TPL2PDF_FONT_DIR":   true,
	"TPL2PDF_BASE_URI":   true,
	"TPL2PDF_ENGINE":     true,
	"TPL2PDF_TIMEOUT":    true,
	"TPL2PDF_WORKERS":    true,
	"TPL2PDF_CONTAINER":  true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparseable durations and counts are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("TPL2PDF_CONFIG"),
		Templates:  getenv("TPL2PDF_TEMPLATES"),
		OutputDir:  getenv("TPL2PDF_OUTPUT_DIR"),
		PageSize:   getenv("TPL2PDF_PAGE_SIZE"),
		FontDir:    getenv("TPL2PDF_FONT_DIR"),
		BaseURI:    getenv("TPL2PDF_BASE_URI"),
		Engine:     getenv("TPL2PDF_ENGINE"),
	}

	if timeout := getenv("TPL2PDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := getenv("TPL2PDF_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized TPL2PDF_* variables.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment values to cfg where the file left them empty.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Templates != "" && cfg.Templates.Dir == "" {
		cfg.Templates.Dir = env.Templates
	}
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.PageSize != "" && cfg.PDF.PageSize == "" {
		cfg.PDF.PageSize = env.PageSize
	}
	if env.FontDir != "" && cfg.PDF.FontDir == "" {
		cfg.PDF.FontDir = env.FontDir
	}
	if env.BaseURI != "" && cfg.PDF.BaseURI == "" {
		cfg.PDF.BaseURI = env.BaseURI
	}
	if env.Engine != "" && cfg.Engine.Name == "" {
		cfg.Engine.Name = env.Engine
	}
	if env.Timeout > 0 && cfg.Engine.Timeout == "" {
		cfg.Engine.Timeout = env.Timeout.String()
	}
}
