package source

import (
	"fmt"
	"strings"
)

// Chain tries its sources in order and returns the first match.
// The order is fixed at construction.
type Chain struct {
	sources []Source
}

// NewChain creates a Chain over the given sources. Nil sources are skipped.
func NewChain(sources ...Source) *Chain {
	kept := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Chain{sources: kept}
}

// Load returns the template text from the first source that holds name.
// Only ErrTemplateNotFound moves the lookup to the next source.
func (c *Chain) Load(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	for _, s := range c.sources {
		content, err := s.Load(name)
		if err == nil {
			return content, nil
		}
		if !IsNotFound(err) {
			return "", err
		}
	}

	return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
}

// Len returns the number of sources in the chain.
func (c *Chain) Len() int {
	return len(c.sources)
}

// Names describes each source in lookup order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.sources))
	for i, s := range c.sources {
		names[i] = s.String()
	}
	return names
}

func (c *Chain) String() string {
	return "[" + strings.Join(c.Names(), ", ") + "]"
}

// Compile-time interface check.
var _ Source = (*Chain)(nil)
