package tpl2pdf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/firefly-oss/go-tpl2pdf/internal/source"
)

// DefaultTemplateDir is the filesystem tier used when no directory is given.
const DefaultTemplateDir = "templates"

// templateSaver is the writable tier of a chain.
type templateSaver interface {
	Save(name, content string) error
}

// sourceConfig records how the template chain is built.
type sourceConfig struct {
	mode   sourceMode
	fsys   fs.FS
	prefix string
	dir    string
}

type sourceMode int

const (
	sourceDefault sourceMode = iota
	sourceSingle
	sourceChain
)

// WithTemplateDir resolves templates from dir only. NewRenderer fails with
// ErrConfiguration if dir does not exist or is not a directory.
func WithTemplateDir(dir string) Option {
	return func(r *Renderer) {
		r.sources = sourceConfig{mode: sourceSingle, dir: dir}
	}
}

// WithTemplateChain resolves templates from fsys under embeddedPrefix first,
// then from filesystemDir. A nil fsys selects the built-in templates; a
// blank prefix or directory means "templates".
//
// A missing filesystemDir is created. If that fails, a warning is logged and
// the Renderer continues with the embedded tier only.
func WithTemplateChain(fsys fs.FS, embeddedPrefix, filesystemDir string) Option {
	return func(r *Renderer) {
		r.sources = sourceConfig{
			mode:   sourceChain,
			fsys:   fsys,
			prefix: embeddedPrefix,
			dir:    filesystemDir,
		}
	}
}

// buildSources builds the template chain and its writable tier.
// The saver is nil when no filesystem tier is available.
func (r *Renderer) buildSources() (*source.Chain, templateSaver, error) {
	switch r.sources.mode {
	case sourceSingle:
		return r.configureSingle(r.sources.dir)
	case sourceChain:
		return r.configureChain(r.sources.fsys, r.sources.prefix, r.sources.dir)
	default:
		return r.configureDefault()
	}
}

func (r *Renderer) configureSingle(dir string) (*source.Chain, templateSaver, error) {
	fsSource, err := source.NewFilesystemSource(dir)
	if err != nil {
		return nil, nil, convertSourceError(err)
	}
	r.logger.Debugf("template source: %s", fsSource)
	return source.NewChain(fsSource), fsSource, nil
}

func (r *Renderer) configureChain(fsys fs.FS, prefix, dir string) (*source.Chain, templateSaver, error) {
	embedded := newEmbeddedSource(fsys, prefix)
	if dir == "" {
		dir = DefaultTemplateDir
	}

	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return nil, nil, fmt.Errorf("%w: template path is not a directory: %s", ErrConfiguration, dir)
	case errors.Is(err, fs.ErrNotExist):
		if mkErr := os.MkdirAll(dir, 0o750); mkErr != nil {
			r.logger.Warnf("template directory %s unavailable, using embedded templates only: %v", dir, mkErr)
			return source.NewChain(embedded), nil, nil
		}
	case err != nil:
		r.logger.Warnf("template directory %s unavailable, using embedded templates only: %v", dir, err)
		return source.NewChain(embedded), nil, nil
	}

	fsSource, err := source.NewFilesystemSource(dir)
	if err != nil {
		r.logger.Warnf("template directory %s unavailable, using embedded templates only: %v", dir, err)
		return source.NewChain(embedded), nil, nil
	}

	r.logger.Debugf("template sources: %s, %s", embedded, fsSource)
	return source.NewChain(embedded, fsSource), fsSource, nil
}

// configureDefault uses the built-in templates, then ./templates once it
// exists. The directory is only created by SaveTemplate.
func (r *Renderer) configureDefault() (*source.Chain, templateSaver, error) {
	embedded := newEmbeddedSource(nil, "")

	deferred, err := source.NewDeferredSource(DefaultTemplateDir)
	if err != nil {
		r.logger.Warnf("template directory %s unavailable, using embedded templates only: %v", DefaultTemplateDir, err)
		return source.NewChain(embedded), nil, nil
	}

	r.logger.Debugf("template sources: %s, %s", embedded, deferred)
	return source.NewChain(embedded, deferred), deferred, nil
}

// newEmbeddedSource wraps fsys, or the built-in templates when fsys is nil.
func newEmbeddedSource(fsys fs.FS, prefix string) *source.EmbeddedSource {
	if fsys == nil {
		fsys = builtinTemplates
	}
	return source.NewEmbeddedSource(fsys, prefix)
}
