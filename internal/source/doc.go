// Package source resolves template names to template text.
//
// # Source Architecture
//
//	Source (interface)
//	    │
//	    ├── EmbeddedSource    - reads from an fs.FS under a prefix (go:embed)
//	    ├── FilesystemSource  - reads from a directory on disk
//	    ├── DeferredSource    - a FilesystemSource created on first save
//	    └── Chain             - tries sources in order, first match wins
//
// A Chain is built once and never re-ordered. It falls through to the next
// source only when the current one reports ErrTemplateNotFound; validation
// and I/O errors stop the lookup. Nothing is cached, so a template written to
// disk is visible to the next Load.
//
// # Template Names
//
// Names are slash-separated relative paths such as "invoice.html" or
// "reports/monthly.html". Empty names, absolute paths, backslashes, NUL bytes
// and "." or ".." elements are rejected with ErrInvalidName.
// FilesystemSource also resolves symlinks and verifies the result stays
// inside its root.
package source
