package source

import "errors"

// Sentinel errors for template source operations.
var (
	// ErrTemplateNotFound indicates no source holds the requested template.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidName indicates the template name is empty or not a safe
	// relative path.
	ErrInvalidName = errors.New("invalid template name")

	// ErrInvalidRoot indicates the configured directory is missing or not a
	// directory.
	ErrInvalidRoot = errors.New("invalid template directory")

	// ErrTemplateRead indicates an I/O error occurred while reading a template.
	ErrTemplateRead = errors.New("failed to read template")

	// ErrTemplateWrite indicates an I/O error occurred while saving a template.
	ErrTemplateWrite = errors.New("failed to write template")

	// ErrPathTraversal indicates an attempt to access files outside the root.
	ErrPathTraversal = errors.New("path traversal detected")
)

// IsNotFound reports whether err means the template is absent from a source.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}
