package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/skvithalani/dotty/internal/diag"
	"github.com/skvithalani/dotty/internal/source"
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgYellow, color.Bold)
	infoStyle    = color.New(color.FgCyan)
	caretStyle   = color.New(color.FgGreen, color.Bold)
)

// Pretty renders bag.Items() human-readable: a header line per diagnostic,
// the source line with a caret underline when the span resolves, then notes.
// Call bag.Sort() first for stable output.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeDiagnostic(w, &d, fs, opts)
	}
}

func writeDiagnostic(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	writeHeader(w, d.Severity, d.Code, d.Message, d.Primary, fs, opts)
	writeContext(w, d.Primary, fs, opts)
	if opts.ShowNotes {
		for _, note := range d.Notes {
			writeHeader(w, diag.SevInfo, d.Code, "note: "+note.Msg, note.Span, fs, opts)
			writeContext(w, note.Span, fs, opts)
		}
	}
}

func writeHeader(w io.Writer, sev diag.Severity, code diag.Code, msg string,
	sp source.Span, fs *source.FileSet, opts PrettyOpts) {
	label := sev.String()
	if opts.Color {
		label = severityStyle(sev).Sprint(label)
	}
	if file := fs.Get(sp.File); file != nil {
		start, _ := fs.Resolve(sp)
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			opts.displayPath(file.Path), start.Line, start.Col, label, code, msg)
		return
	}
	fmt.Fprintf(w, "%s %s: %s\n", label, code, msg)
}

// writeContext prints the first spanned source line and a ^~~~ underline
// aligned by display width, so wide runes and tabs stay under the caret.
func writeContext(w io.Writer, sp source.Span, fs *source.FileSet, opts PrettyOpts) {
	file := fs.Get(sp.File)
	if file == nil || sp.Empty() && sp.Start == 0 {
		return
	}
	start, end := fs.Resolve(sp)
	line := file.GetLine(start.Line)
	if line == "" {
		return
	}

	// Columns are byte offsets into the line.
	from := min(int(start.Col)-1, len(line))
	to := min(int(end.Col)-1, len(line))
	if end.Line > start.Line {
		to = len(line)
	}
	prefix, spanned := line[:from], line[from:max(to, from)]

	shown := line
	if opts.Width > 0 {
		shown = runewidth.Truncate(line, opts.Width, "…")
	}
	fmt.Fprintf(w, "  %s\n", shown)

	pad := strings.Repeat(" ", runewidth.StringWidth(prefix))
	underline := "^" + strings.Repeat("~", max(runewidth.StringWidth(spanned)-1, 0))
	if opts.Width > 0 && runewidth.StringWidth(pad+underline) > opts.Width {
		underline = runewidth.Truncate(underline, max(opts.Width-len(pad), 1), "")
	}
	if opts.Color {
		underline = caretStyle.Sprint(underline)
	}
	fmt.Fprintf(w, "  %s%s\n", pad, underline)
}

func severityStyle(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorStyle
	case diag.SevWarning:
		return warningStyle
	default:
		return infoStyle
	}
}
