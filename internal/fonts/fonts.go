// Package fonts discovers TrueType and OpenType fonts in a directory and
// renders them as @font-face rules with embedded data URLs.
package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// ErrUnsupportedFont indicates the file is not a parsable TrueType or
// OpenType font.
var ErrUnsupportedFont = errors.New("unsupported font")

// Warner receives warnings for fonts that are skipped.
type Warner interface {
	Warnf(format string, args ...any)
}

// Face is one embeddable font file.
type Face struct {
	Family string // family name from the font's name table
	Bold   bool
	Italic bool
	Path   string
	Format string // "truetype" or "opentype"
	Data   []byte
}

// Table holds the faces registered for a single render.
type Table struct {
	faces []Face
}

// Faces returns the registered faces in directory order.
func (t *Table) Faces() []Face {
	if t == nil {
		return nil
	}
	return t.faces
}

// Len returns the number of registered faces.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.faces)
}

// Add registers a face.
func (t *Table) Add(f Face) {
	t.faces = append(t.faces, f)
}

// IsFontFile reports whether name has a .ttf or .otf extension, ignoring case.
func IsFontFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ttf", ".otf":
		return true
	}
	return false
}

// Scan registers every .ttf and .otf file directly inside dir.
// Subdirectories are not searched. A missing directory or an unusable file
// is reported to w and skipped; Scan never fails.
func Scan(dir string, w Warner) *Table {
	table := &Table{}
	if dir == "" {
		return table
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.Warnf("font directory %s unavailable: %v", dir, err)
		return table
	}

	for _, entry := range entries {
		if entry.IsDir() || !IsFontFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		face, err := Load(path)
		if err != nil {
			w.Warnf("skipping font %s: %v", path, err)
			continue
		}
		table.Add(face)
	}

	return table
}

// Load reads and parses a single font file.
func Load(path string) (Face, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- caller-selected font directory
	if err != nil {
		return Face{}, err
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return Face{}, fmt.Errorf("%w: %v", ErrUnsupportedFont, err)
	}

	base := filepath.Base(path)
	face := Face{
		Family: nameOr(f, sfnt.NameIDFamily, strings.TrimSuffix(base, filepath.Ext(base))),
		Path:   path,
		Format: "truetype",
		Data:   data,
	}
	if strings.EqualFold(filepath.Ext(path), ".otf") {
		face.Format = "opentype"
	}

	sub := strings.ToLower(nameOr(f, sfnt.NameIDSubfamily, ""))
	face.Bold = strings.Contains(sub, "bold")
	face.Italic = strings.Contains(sub, "italic") || strings.Contains(sub, "oblique")

	return face, nil
}

func nameOr(f *opentype.Font, id sfnt.NameID, fallback string) string {
	name, err := f.Name(nil, id)
	if err != nil || strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}
