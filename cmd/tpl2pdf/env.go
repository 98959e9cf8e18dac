package main

import (
	"io"
	"os"
	"time"

	tpl2pdf "github.com/firefly-oss/go-tpl2pdf"
)

// EngineFactory builds the PDF engine for each Renderer.
type EngineFactory func(name string, cfg tpl2pdf.EngineConfig) (tpl2pdf.Engine, error)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now       func() time.Time
	Stdout    io.Writer
	Stderr    io.Writer
	Getenv    func(string) string
	Environ   func() []string
	NewEngine EngineFactory
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:       time.Now,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Getenv:    os.Getenv,
		Environ:   os.Environ,
		NewEngine: tpl2pdf.NewEngine,
	}
}
