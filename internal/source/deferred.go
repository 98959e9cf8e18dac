package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DeferredSource is a filesystem source whose directory may not exist yet.
// Load reports ErrTemplateNotFound until the directory appears; Save creates it.
type DeferredSource struct {
	root string

	mu sync.Mutex
	fs *FilesystemSource
}

// NewDeferredSource creates a DeferredSource rooted at dir.
// An existing path that is not a directory is rejected with ErrInvalidRoot.
func NewDeferredSource(dir string) (*DeferredSource, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidRoot)
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidRoot, absPath)
	}
	return &DeferredSource{root: absPath}, nil
}

// Root returns the absolute directory, whether or not it exists.
func (d *DeferredSource) Root() string {
	return d.root
}

// Load reads {root}/{name} once the directory exists.
func (d *DeferredSource) Load(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	fs, err := d.open(false)
	if err != nil {
		return "", err
	}
	if fs == nil {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return fs.Load(name)
}

// Save writes content to {root}/{name}, creating the directory if needed.
func (d *DeferredSource) Save(name, content string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	fs, err := d.open(true)
	if err != nil {
		return err
	}
	return fs.Save(name, content)
}

func (d *DeferredSource) String() string {
	return "filesystem:" + d.root
}

// open returns the underlying source, or nil when the directory is absent
// and create is false.
func (d *DeferredSource) open(create bool) (*FilesystemSource, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fs != nil {
		return d.fs, nil
	}

	if _, err := os.Stat(d.root); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %v", ErrTemplateRead, err)
		}
		if !create {
			return nil, nil
		}
		if err := os.MkdirAll(d.root, 0o750); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTemplateWrite, err)
		}
	}

	fs, err := NewFilesystemSource(d.root)
	if err != nil {
		return nil, err
	}
	d.fs = fs
	return fs, nil
}

// Compile-time interface check.
var _ Source = (*DeferredSource)(nil)
