package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/outdated/pkg/deps"
	"github.com/matzehuels/outdated/pkg/manifest"
)

// UpToDate is printed under the title when no group has entries.
const UpToDate = "All dependencies up to date."

var (
	colorMagenta = lipgloss.Color("170")
	colorGreen   = lipgloss.Color("35")
	colorYellow  = lipgloss.Color("220")
	colorRed     = lipgloss.Color("167")
	colorGray    = lipgloss.Color("245")
)

// Styles colours the parts of a report line.
type Styles struct {
	Title    lipgloss.Style
	Group    lipgloss.Style
	Name     lipgloss.Style
	Required lipgloss.Style
	Stable   lipgloss.Style
	Latest   lipgloss.Style
	Dim      lipgloss.Style
}

// DefaultStyles returns the console palette.
func DefaultStyles() *Styles {
	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Underline(true),
		Group:    lipgloss.NewStyle().Bold(true),
		Name:     lipgloss.NewStyle().Foreground(colorMagenta),
		Required: lipgloss.NewStyle().Foreground(colorRed),
		Stable:   lipgloss.NewStyle().Foreground(colorGreen),
		Latest:   lipgloss.NewStyle().Foreground(colorYellow),
		Dim:      lipgloss.NewStyle().Foreground(colorGray),
	}
}

// Formatter renders a [deps.Report] as text. The zero value renders plain
// text; set Styles for terminal colours.
type Formatter struct {
	Styles *Styles
}

// Format renders r under a title line naming path. Groups appear in
// [manifest.Groups] order and packages sorted by name:
//
//	package.json
//	dependencies
//	  express { required: ^3.0.0, stable: 4.18.2, latest: 4.18.2 }
//
// Missing values print as "*" for the constraint and "none" for the stable
// and latest versions. Format performs no I/O and the output has no trailing newline.
func (f Formatter) Format(path string, r deps.Report) string {
	var b strings.Builder
	b.WriteString(f.render(f.style().Title, path))

	if r.Count() == 0 {
		b.WriteString("\n  ")
		b.WriteString(f.render(f.style().Dim, UpToDate))
		return b.String()
	}

	for _, g := range manifest.Groups {
		if len(r[g]) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(f.render(f.style().Group, string(g)))
		for _, name := range r.Names(g) {
			b.WriteString("\n  ")
			b.WriteString(f.line(name, r[g][name]))
		}
	}
	return b.String()
}

func (f Formatter) line(name string, rec deps.Record) string {
	s := f.style()
	return fmt.Sprintf("%s { required: %s, stable: %s, latest: %s }",
		f.render(s.Name, name),
		f.render(s.Required, orDefault(rec.Required, "*")),
		f.render(s.Stable, orDefault(rec.Stable, "none")),
		f.render(s.Latest, orDefault(rec.Latest, "none")),
	)
}

func (f Formatter) style() *Styles {
	if f.Styles == nil {
		return &Styles{}
	}
	return f.Styles
}

func (f Formatter) render(s lipgloss.Style, text string) string {
	if f.Styles == nil {
		return text
	}
	return s.Render(text)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
