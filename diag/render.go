package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/t14raptor/fastscope/source"
)

type RenderOptions struct {
	Color bool
	// Snippet prints the offending source line with a caret underline.
	Snippet bool
}

type palette struct {
	err, warn, note, loc, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:   color.New(color.FgRed, color.Bold),
		warn:  color.New(color.FgYellow, color.Bold),
		note:  color.New(color.FgCyan),
		loc:   color.New(color.Bold),
		caret: color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.note, p.loc, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s Severity) *color.Color {
	switch s {
	case SevError:
		return p.err
	case SevWarning:
		return p.warn
	}
	return p.note
}

// Render writes diags in a compiler-style layout:
//
//	a.js:3:5: error[S1001]: identifier 'x' is already declared
func Render(w io.Writer, files *source.FileSet, diags []Diagnostic, opts RenderOptions) error {
	p := newPalette(opts.Color)
	for _, d := range diags {
		head := fmt.Sprintf("%s[%s]", d.Severity, d.Code.ID())
		if _, err := fmt.Fprintf(w, "%s: %s: %s\n", p.loc.Sprint(location(files, d.Primary)), p.severity(d.Severity).Sprint(head), d.Message); err != nil {
			return err
		}
		if opts.Snippet {
			if err := renderSnippet(w, p, files, d.Primary); err != nil {
				return err
			}
		}
		for _, n := range d.Notes {
			if _, err := fmt.Fprintf(w, "%s: %s: %s\n", p.loc.Sprint(location(files, n.Span)), p.note.Sprint("note"), n.Msg); err != nil {
				return err
			}
			if opts.Snippet {
				if err := renderSnippet(w, p, files, n.Span); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func location(files *source.FileSet, span source.Span) string {
	f := files.Get(span.File)
	if f == nil {
		return span.String()
	}
	start, _ := files.Position(span)
	return fmt.Sprintf("%s:%s", f.Path, start)
}

func renderSnippet(w io.Writer, p palette, files *source.FileSet, span source.Span) error {
	f := files.Get(span.File)
	if f == nil {
		return nil
	}
	start, end := files.Position(span)
	line := f.Line(start.Line)
	if line == "" {
		return nil
	}
	prefix := clampPrefix(line, int(start.Col)-1)
	width := 1
	if end.Line == start.Line && end.Col > start.Col {
		width = max(1, runewidth.StringWidth(clampPrefix(line, int(end.Col)-1))-runewidth.StringWidth(prefix))
	}
	pad := indent(prefix)
	_, err := fmt.Fprintf(w, "    %s\n    %s%s\n", line, pad, p.caret.Sprint(strings.Repeat("^", width)))
	return err
}

func clampPrefix(line string, n int) string {
	if n < 0 {
		return ""
	}
	if n > len(line) {
		return line
	}
	return line[:n]
}

// indent mirrors prefix as blanks, keeping tabs so the caret lines up.
func indent(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}
