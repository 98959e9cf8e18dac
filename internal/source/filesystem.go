package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemSource loads templates from a directory on disk.
type FilesystemSource struct {
	root string
}

// NewFilesystemSource creates a FilesystemSource for the given directory.
// Returns ErrInvalidRoot if the path is not a valid, readable directory.
func NewFilesystemSource(root string) (*FilesystemSource, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidRoot)
	}

	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}

	// Containment checks compare real paths.
	if realPath, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = realPath
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidRoot, absPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidRoot, absPath)
	}

	if _, err := os.ReadDir(absPath); err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidRoot, err)
	}

	return &FilesystemSource{root: absPath}, nil
}

// Root returns the absolute directory templates are read from.
func (f *FilesystemSource) Root() string {
	return f.root
}

// Load reads {root}/{name}.
func (f *FilesystemSource) Load(name string) (string, error) {
	filePath, err := f.resolve(name)
	if err != nil {
		return "", err
	}

	if info, err := os.Stat(filePath); err == nil && info.IsDir() {
		return "", fmt.Errorf("%w: %q is a directory", ErrTemplateNotFound, name)
	}

	content, err := os.ReadFile(filePath) // #nosec G304 -- path validated above
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
		}
		return "", fmt.Errorf("%w: %v", ErrTemplateRead, err)
	}

	return string(content), nil
}

// Save writes content to {root}/{name}, creating intermediate directories.
// An existing template with the same name is overwritten.
func (f *FilesystemSource) Save(name, content string) error {
	filePath, err := f.resolve(name)
	if err != nil {
		return err
	}

	// The target usually does not exist yet, so its parent is checked.
	if err := f.verifyDirContainment(filepath.Dir(filePath)); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return fmt.Errorf("%w: %v", ErrTemplateWrite, err)
	}
	if err := f.verifyDirContainment(filepath.Dir(filePath)); err != nil {
		return err
	}
	if err := os.WriteFile(filePath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrTemplateWrite, err)
	}
	return nil
}

func (f *FilesystemSource) String() string {
	return "filesystem:" + f.root
}

func (f *FilesystemSource) resolve(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	filePath := filepath.Join(f.root, filepath.FromSlash(name))
	if err := f.verifyPathContainment(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}

// verifyPathContainment ensures the symlink-resolved path stays under root.
func (f *FilesystemSource) verifyPathContainment(filePath string) error {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}

	// A missing file cannot be resolved; the prefix check still applies.
	if realPath, err := filepath.EvalSymlinks(absFilePath); err == nil {
		absFilePath = realPath
	}

	if !strings.HasPrefix(absFilePath, f.root+string(filepath.Separator)) {
		return fmt.Errorf("%w: path escapes template directory", ErrPathTraversal)
	}

	return nil
}

// verifyDirContainment resolves the nearest existing ancestor of dir and
// ensures it is root or lies under root. Missing components below it are
// created as plain directories by Save.
func (f *FilesystemSource) verifyDirContainment(dir string) error {
	existing := dir
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
		}
		existing = parent
	}

	realPath, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}
	if realPath != f.root && !strings.HasPrefix(realPath, f.root+string(filepath.Separator)) {
		return fmt.Errorf("%w: path escapes template directory", ErrPathTraversal)
	}
	return nil
}

// Compile-time interface check.
var _ Source = (*FilesystemSource)(nil)
