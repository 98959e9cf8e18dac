package main

// Notes:
// - loadEnvConfig: we test every TPL2PDF_* variable through an injected
//   getenv. Invalid/negative values for timeout and workers are ignored.
// - warnUnknownEnvVars: we test typo detection and that known vars don't warn.
// - applyEnvConfig: we test that env fills gaps but never overrides the file.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/firefly-oss/go-tpl2pdf/internal/config"
)

func mapGetenv(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable loading
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("all variables", func(t *testing.T) {
		t.Parallel()

		got := loadEnvConfig(mapGetenv(map[string]string{
			"TPL2PDF_CONFIG":     "/etc/tpl2pdf.yaml",
			"TPL2PDF_TEMPLATES":  "/srv/templates",
			"TPL2PDF_OUTPUT_DIR": "/srv/out",
			"TPL2PDF_PAGE_SIZE":  "letter",
			"TPL2PDF_FONT_DIR":   "/srv/fonts",
			"TPL2PDF_BASE_URI":   "https://cdn.example.com/",
			"TPL2PDF_ENGINE":     "chromedp",
			"TPL2PDF_TIMEOUT":    "2m",
			"TPL2PDF_WORKERS":    "3",
		}))

		want := &envConfig{
			ConfigPath: "/etc/tpl2pdf.yaml",
			Templates:  "/srv/templates",
			OutputDir:  "/srv/out",
			PageSize:   "letter",
			FontDir:    "/srv/fonts",
			BaseURI:    "https://cdn.example.com/",
			Engine:     "chromedp",
			Timeout:    2 * time.Minute,
			Workers:    3,
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("loadEnvConfig() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("invalid values are ignored", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			timeout, workers string
		}{
			{"soon", "many"},
			{"-5s", "-2"},
			{"0s", "0"},
		}
		for _, tt := range tests {
			got := loadEnvConfig(mapGetenv(map[string]string{
				"TPL2PDF_TIMEOUT": tt.timeout,
				"TPL2PDF_WORKERS": tt.workers,
			}))
			if got.Timeout != 0 {
				t.Errorf("TPL2PDF_TIMEOUT=%q: Timeout = %v, want 0", tt.timeout, got.Timeout)
			}
			if got.Workers != 0 {
				t.Errorf("TPL2PDF_WORKERS=%q: Workers = %d, want 0", tt.workers, got.Workers)
			}
		}
	})

	t.Run("nothing set", func(t *testing.T) {
		t.Parallel()

		got := loadEnvConfig(mapGetenv(nil))
		if diff := cmp.Diff(&envConfig{}, got); diff != "" {
			t.Errorf("loadEnvConfig() mismatch (-want +got):\n%s", diff)
		}
	})
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf, []string{
		"HOME=/root",
		"TPL2PDF_ENGINE=rod",
		"TPL2PDF_CONTAINER=1",
		"TPL2PDF_TIMEOT=30s",
		"TPL2PDF_PAGESIZE=a4",
	})

	out := buf.String()
	for _, want := range []string{"TPL2PDF_TIMEOT", "TPL2PDF_PAGESIZE"} {
		if !strings.Contains(out, "unknown environment variable "+want) {
			t.Errorf("output should warn about %s, got %q", want, out)
		}
	}
	for _, notWant := range []string{"TPL2PDF_ENGINE", "TPL2PDF_CONTAINER", "HOME"} {
		if strings.Contains(out, notWant) {
			t.Errorf("output should not mention %s, got %q", notWant, out)
		}
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Env fills gaps, config file wins
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	env := &envConfig{
		Templates: "/env/templates",
		OutputDir: "/env/out",
		PageSize:  "legal",
		FontDir:   "/env/fonts",
		BaseURI:   "https://env.example.com/",
		Engine:    "chromedp",
		Timeout:   90 * time.Second,
	}

	t.Run("empty config takes env values", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		applyEnvConfig(env, cfg)

		want := &config.Config{
			Templates: config.TemplatesConfig{Dir: "/env/templates"},
			PDF: config.PDFConfig{
				PageSize: "legal",
				FontDir:  "/env/fonts",
				BaseURI:  "https://env.example.com/",
			},
			Engine: config.EngineConfig{Name: "chromedp", Timeout: "1m30s"},
			Output: config.OutputConfig{DefaultDir: "/env/out"},
		}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("applyEnvConfig() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("config values are kept", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{
			PDF:    config.PDFConfig{PageSize: "a3"},
			Engine: config.EngineConfig{Name: "rod", Timeout: "10s"},
		}
		applyEnvConfig(env, cfg)

		if cfg.PDF.PageSize != "a3" {
			t.Errorf("PageSize = %q, want a3", cfg.PDF.PageSize)
		}
		if cfg.Engine.Name != "rod" || cfg.Engine.Timeout != "10s" {
			t.Errorf("Engine = %+v, want rod/10s", cfg.Engine)
		}
		if cfg.PDF.FontDir != "/env/fonts" {
			t.Errorf("FontDir = %q, want env value", cfg.PDF.FontDir)
		}
	})
}
