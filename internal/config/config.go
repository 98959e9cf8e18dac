package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/firefly-oss/go-tpl2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength     = 4096 // PATH_MAX on Linux
	MaxPrefixLength   = 255
	MaxPageSizeLength = 10 // "A4", "LETTER", "LEGAL", "A3"
	MaxFontNameLength = 100
	MaxURLLength      = 2048 // Browser limit
	MaxEngineLength   = 20
	MaxTimeoutLength  = 20 // "30s", "1m30s"
	MaxArgLength      = 1024
	MaxArgs           = 64
)

// AppName is the directory name used under the user config directory.
const AppName = "go-tpl2pdf"

// Config holds the CLI configuration. Every field is optional; flags override it.
type Config struct {
	Templates TemplatesConfig `yaml:"templates"`
	PDF       PDFConfig       `yaml:"pdf"`
	Engine    EngineConfig    `yaml:"engine"`
	Output    OutputConfig    `yaml:"output"`
}

// TemplatesConfig selects the template sources.
type TemplatesConfig struct {
	Dir            string `yaml:"dir"`            // Filesystem tier (default: ./templates)
	EmbeddedPrefix string `yaml:"embeddedPrefix"` // Prefix inside the built-in templates (default: templates)
	Single         bool   `yaml:"single"`         // Use dir alone, without the built-in tier
}

// PDFConfig defines page settings.
type PDFConfig struct {
	PageSize    string        `yaml:"pageSize"` // "A4", "LETTER", "LEGAL", "A3"
	Margin      *float64      `yaml:"margin"`   // points, applies to all sides
	Margins     MarginsConfig `yaml:"margins"`  // per-side overrides
	FontDir     string        `yaml:"fontDir"`
	DefaultFont string        `yaml:"defaultFont"`
	BaseURI     string        `yaml:"baseURI"`
}

// MarginsConfig holds per-side margins in points. Nil means unset.
type MarginsConfig struct {
	Top    *float64 `yaml:"top"`
	Right  *float64 `yaml:"right"`
	Bottom *float64 `yaml:"bottom"`
	Left   *float64 `yaml:"left"`
}

// EngineConfig defines browser engine settings.
type EngineConfig struct {
	Name       string   `yaml:"name"`    // "rod" or "chromedp"
	Timeout    string   `yaml:"timeout"` // Go duration, e.g. "45s"
	BrowserBin string   `yaml:"browserBin"`
	Args       []string `yaml:"args"` // Extra Chrome flags, "--name=value"
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = next to the data file)
}

// TimeoutDuration parses Timeout. Zero is returned when it is unset.
func (e EngineConfig) TimeoutDuration() (time.Duration, error) {
	if e.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(e.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: engine.timeout: %v", ErrInvalidValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: engine.timeout: must be positive, got %s", ErrInvalidValue, e.Timeout)
	}
	return d, nil
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("templates.dir", c.Templates.Dir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("templates.embeddedPrefix", c.Templates.EmbeddedPrefix, MaxPrefixLength); err != nil {
		return err
	}
	if c.Templates.Single && strings.TrimSpace(c.Templates.Dir) == "" {
		return fmt.Errorf("%w: templates.dir: required when templates.single is set", ErrInvalidValue)
	}

	if err := validateFieldLength("pdf.pageSize", c.PDF.PageSize, MaxPageSizeLength); err != nil {
		return err
	}
	if err := validateFieldLength("pdf.fontDir", c.PDF.FontDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("pdf.defaultFont", c.PDF.DefaultFont, MaxFontNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("pdf.baseURI", c.PDF.BaseURI, MaxURLLength); err != nil {
		return err
	}
	margins := []struct {
		name  string
		value *float64
	}{
		{"pdf.margin", c.PDF.Margin},
		{"pdf.margins.top", c.PDF.Margins.Top},
		{"pdf.margins.right", c.PDF.Margins.Right},
		{"pdf.margins.bottom", c.PDF.Margins.Bottom},
		{"pdf.margins.left", c.PDF.Margins.Left},
	}
	for _, m := range margins {
		if err := validateMargin(m.name, m.value); err != nil {
			return err
		}
	}

	if err := validateFieldLength("engine.name", c.Engine.Name, MaxEngineLength); err != nil {
		return err
	}
	if c.Engine.Name != "" {
		switch strings.ToLower(c.Engine.Name) {
		case "rod", "chromedp":
			// valid
		default:
			return fmt.Errorf("%w: engine.name: %q (must be rod or chromedp)", ErrInvalidValue, c.Engine.Name)
		}
	}
	if err := validateFieldLength("engine.timeout", c.Engine.Timeout, MaxTimeoutLength); err != nil {
		return err
	}
	if _, err := c.Engine.TimeoutDuration(); err != nil {
		return err
	}
	if err := validateFieldLength("engine.browserBin", c.Engine.BrowserBin, MaxPathLength); err != nil {
		return err
	}
	if len(c.Engine.Args) > MaxArgs {
		return fmt.Errorf("%w: engine.args: %d entries (max %d)", ErrInvalidValue, len(c.Engine.Args), MaxArgs)
	}
	for i, arg := range c.Engine.Args {
		if err := validateFieldLength(fmt.Sprintf("engine.args[%d]", i), arg, MaxArgLength); err != nil {
			return err
		}
	}

	return validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateMargin(fieldName string, value *float64) error {
	if value == nil {
		return nil
	}
	v := *value
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: %s: must be a non-negative number, got %v", ErrInvalidValue, fieldName, v)
	}
	return nil
}

// DefaultConfig returns an empty configuration: library defaults apply.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// SearchPaths lists the files LoadConfig tries for a config name, in order:
// name.yaml and name.yml in the current directory, then in
// $XDG_CONFIG_HOME/go-tpl2pdf/ (or the platform equivalent).
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppName, name+ext))
		}
	}

	return paths
}

// resolveConfigPath returns the first existing file from SearchPaths.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
