package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	flag "github.com/spf13/pflag"
)

// ---------------------------------------------------------------------------
// TestParseRenderFlags - Render flag parsing
// ---------------------------------------------------------------------------

func TestParseRenderFlags(t *testing.T) {
	t.Parallel()

	var usage bytes.Buffer
	f, args, err := parseRenderFlags([]string{
		"invoice.html",
		"-d", "a.yaml", "--data", "b.json",
		"-o", "out/",
		"--html-only",
		"-w", "4",
		"-c", "work",
		"--templates", "tpl",
		"-p", "letter",
		"--margin", "0",
		"--margin-left", "36",
		"--font-dir", "fonts",
		"--default-font", "Inter",
		"--base-uri", "https://example.com/",
		"--engine", "chromedp",
		"-t", "45s",
		"-v",
	}, &usage)
	if err != nil {
		t.Fatalf("parseRenderFlags() error = %v", err)
	}

	if diff := cmp.Diff([]string{"invoice.html"}, args); diff != "" {
		t.Errorf("positional mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a.yaml", "b.json"}, f.data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
	if f.output != "out/" || !f.htmlOnly || f.workers != 4 || f.inline {
		t.Errorf("io flags = output %q htmlOnly %v workers %d inline %v", f.output, f.htmlOnly, f.workers, f.inline)
	}
	if f.common != (commonFlags{config: "work", templates: "tpl", verbose: true}) {
		t.Errorf("common = %+v", f.common)
	}
	if f.page.size != "letter" || f.page.fontDir != "fonts" || f.page.defaultFont != "Inter" || f.page.baseURI != "https://example.com/" {
		t.Errorf("page = %+v", f.page)
	}
	if f.engine != (engineFlags{name: "chromedp", timeout: "45s"}) {
		t.Errorf("engine = %+v", f.engine)
	}

	wantSet := map[string]bool{"margin": true, "margin-left": true}
	if diff := cmp.Diff(wantSet, f.page.margins.set); diff != "" {
		t.Errorf("margins.set mismatch (-want +got):\n%s", diff)
	}
	if f.page.margins.all != 0 || f.page.margins.left != 36 {
		t.Errorf("margins = %+v", f.page.margins)
	}
}

func TestParseRenderFlags_Defaults(t *testing.T) {
	t.Parallel()

	f, args, err := parseRenderFlags([]string{"-i", "letter.md"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseRenderFlags() error = %v", err)
	}
	if !f.inline || len(args) != 1 || args[0] != "letter.md" {
		t.Errorf("inline = %v, args = %v", f.inline, args)
	}
	if len(f.page.margins.set) != 0 {
		t.Errorf("no margin flag given, set = %v", f.page.margins.set)
	}
	if f.workers != 0 || f.output != "" || f.data != nil {
		t.Errorf("unexpected defaults: %+v", f)
	}
}

func TestParseRenderFlags_Help(t *testing.T) {
	t.Parallel()

	var usage bytes.Buffer
	_, _, err := parseRenderFlags([]string{"-h"}, &usage)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("parseRenderFlags(-h) error = %v, want ErrHelp", err)
	}
	if !bytes.Contains(usage.Bytes(), []byte("Usage: tpl2pdf render")) {
		t.Errorf("usage = %q", usage.String())
	}
}

// ---------------------------------------------------------------------------
// TestParseSaveFlags - Save flag parsing
// ---------------------------------------------------------------------------

func TestParseSaveFlags(t *testing.T) {
	t.Parallel()

	f, args, err := parseSaveFlags([]string{"a.html", "src.html", "--templates", "tpl", "-q"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseSaveFlags() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a.html", "src.html"}, args); diff != "" {
		t.Errorf("positional mismatch (-want +got):\n%s", diff)
	}
	if f.common != (commonFlags{templates: "tpl", quiet: true}) {
		t.Errorf("common = %+v", f.common)
	}
}

func TestParseSaveFlags_UnknownFlag(t *testing.T) {
	t.Parallel()

	if _, _, err := parseSaveFlags([]string{"--page-size", "a4"}, &bytes.Buffer{}); err == nil {
		t.Error("save should reject render-only flags")
	}
}
