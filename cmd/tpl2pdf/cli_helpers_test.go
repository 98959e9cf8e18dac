package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tpl2pdf "github.com/firefly-oss/go-tpl2pdf"
)

// fakePDF is what fakeEngine returns for every render.
const fakePDF = "%PDF-1.4 fake"

// fakeEngine records the documents it is asked to print.
type fakeEngine struct {
	mu     sync.Mutex
	docs   []string
	err    error
	closed bool
}

func (e *fakeEngine) Render(ctx context.Context, html string, _ tpl2pdf.PDFOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	e.docs = append(e.docs, html)
	return []byte(fakePDF), nil
}

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *fakeEngine) rendered() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.docs...)
}

// testEnv bundles an Environment with its captured output.
type testEnv struct {
	*Environment
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	engine  *fakeEngine
	engines []string // engine names requested from the factory
	mu      sync.Mutex
}

// newTestEnv returns an Environment whose engines are a shared fakeEngine
// and whose environment variables come from vars.
func newTestEnv(t *testing.T, vars map[string]string) *testEnv {
	t.Helper()

	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		engine: &fakeEngine{},
	}
	te.Environment = &Environment{
		Now:    func() time.Time { return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC) },
		Stdout: te.stdout,
		Stderr: te.stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			env := make([]string, 0, len(vars))
			for k, v := range vars {
				env = append(env, k+"="+v)
			}
			return env
		},
		NewEngine: func(name string, _ tpl2pdf.EngineConfig) (tpl2pdf.Engine, error) {
			te.mu.Lock()
			te.engines = append(te.engines, name)
			te.mu.Unlock()
			return te.engine, nil
		},
	}
	return te
}

// writeFile writes content to name under dir and returns the full path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// readFile returns the content of path or fails the test.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) // #nosec G304 -- test path
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", path, err)
	}
	return string(data)
}
