package source

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
)

// DefaultPrefix is the directory templates are looked up under when no
// prefix is configured.
const DefaultPrefix = "templates"

// EmbeddedSource loads templates from an fs.FS, typically a go:embed
// filesystem bundled with the application.
type EmbeddedSource struct {
	fsys   fs.FS
	prefix string
}

// NewEmbeddedSource creates an EmbeddedSource reading {prefix}/{name} from fsys.
// A blank prefix defaults to DefaultPrefix.
func NewEmbeddedSource(fsys fs.FS, prefix string) *EmbeddedSource {
	prefix = path.Clean("/" + prefix)[1:]
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &EmbeddedSource{fsys: fsys, prefix: prefix}
}

// Load reads a template from the embedded filesystem.
func (e *EmbeddedSource) Load(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	p := path.Join(e.prefix, name)
	if info, err := fs.Stat(e.fsys, p); err == nil && info.IsDir() {
		return "", fmt.Errorf("%w: %q is a directory", ErrTemplateNotFound, name)
	}

	content, err := fs.ReadFile(e.fsys, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
		}
		return "", fmt.Errorf("%w: %v", ErrTemplateRead, err)
	}

	return string(content), nil
}

// Prefix returns the directory inside the filesystem templates are read from.
func (e *EmbeddedSource) Prefix() string {
	return e.prefix
}

func (e *EmbeddedSource) String() string {
	return "embedded:" + e.prefix
}

// Compile-time interface check.
var _ Source = (*EmbeddedSource)(nil)
