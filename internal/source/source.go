package source

// Source loads template text by name.
// Implementations may read from embedded assets, a directory, a database, etc.
type Source interface {
	// Load returns the template text for name.
	// Returns ErrTemplateNotFound if this source does not hold the template.
	// Returns ErrInvalidName if the name is not a safe relative path.
	Load(name string) (string, error)

	// String describes the source for log messages.
	String() string
}
