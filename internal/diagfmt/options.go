package diagfmt

import "path/filepath"

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeFull keeps paths exactly as the FileSet recorded them.
	PathModeFull PathMode = iota
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	Width     int // terminal width for caret lines, 0 means unlimited
	ShowNotes bool
}

func (o PrettyOpts) displayPath(path string) string {
	if o.PathMode == PathModeBasename {
		return filepath.Base(path)
	}
	return path
}
