// Package report renders summaries of parsed input decks as plain text,
// Markdown or HTML.
package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"sort"
	"strings"

	md "github.com/russross/blackfriday/v2"

	"github.com/numerics88/inpdeck/pkg/inp"
)

// Summary is the reportable content of one model.
type Summary struct {
	Name        string
	Description string
	LineCount   int64
	Nodes       int
	Elements    int
	Bounds      inp.Bounds

	ElementTypes []Count
	NodeSets     []Count
	ElementSets  []Count
	Materials    []MaterialRow
	Unassigned   int
	Steps        []StepRow
	Constraints  []ConstraintRow
	Warnings     []string
}

// Count is a labelled number, such as a set and its size.
type Count struct {
	Name  string
	Count int
}

// MaterialRow describes one material and how many elements use it.
type MaterialRow struct {
	Name     string
	Kind     string
	Elements int
}

// StepRow describes one analysis step.
type StepRow struct {
	Name        string
	Static      bool
	Constraints []string
}

// ConstraintRow describes one boundary condition or load.
type ConstraintRow struct {
	Name    string
	Kind    string
	Entries int
}

// Summarize collects the report content of m.
func Summarize(m *inp.Model) Summary {
	s := Summary{
		Name:        m.Name(),
		Description: m.Description(),
		LineCount:   m.LineCount(),
		Nodes:       m.NodeCount(),
		Elements:    m.ElementCount(),
		Bounds:      m.Bounds(),
		Unassigned:  m.Unassigned(),
		Warnings:    m.Warnings(),
	}

	types := make(map[inp.ElementType]int)
	perMaterial := make(map[string]int)
	for _, e := range m.Elements() {
		types[e.Type]++
		if name, ok := m.ElementMaterial(e.ID); ok {
			perMaterial[strings.ToLower(name)]++
		}
	}
	var keys []inp.ElementType
	for t := range types {
		keys = append(keys, t)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, t := range keys {
		s.ElementTypes = append(s.ElementTypes, Count{Name: t.String(), Count: types[t]})
	}

	for _, set := range m.NodeSets() {
		s.NodeSets = append(s.NodeSets, Count{Name: set.Name, Count: len(set.IDs)})
	}
	for _, set := range m.ElementSets() {
		s.ElementSets = append(s.ElementSets, Count{Name: set.Name, Count: len(set.IDs)})
	}
	for _, mat := range m.Materials() {
		s.Materials = append(s.Materials, MaterialRow{
			Name:     mat.Name,
			Kind:     mat.Kind.String(),
			Elements: perMaterial[strings.ToLower(mat.Name)],
		})
	}
	for _, step := range m.Steps() {
		s.Steps = append(s.Steps, StepRow{Name: step.Name, Static: step.Static != nil, Constraints: step.Constraints})
	}
	for _, c := range m.Constraints() {
		s.Constraints = append(s.Constraints, ConstraintRow{Name: c.Name, Kind: c.Kind.String(), Entries: len(c.Entries)})
	}
	return s
}

// printer latches the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) f(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func stepName(name string) string {
	if name == "" {
		return "(unnamed)"
	}
	return name
}

func formatBounds(b inp.Bounds) string {
	return fmt.Sprintf("x [%g, %g], y [%g, %g], z [%g, %g]", b.MinX, b.MaxX, b.MinY, b.MaxY, b.MinZ, b.MaxZ)
}

// Text writes s as indented plain text.
func Text(w io.Writer, s Summary) error {
	p := &printer{w: w}
	p.f("%s", s.Name)
	if s.Description != "" {
		for _, line := range strings.Split(s.Description, "\n") {
			p.f("  | %s", line)
		}
	}
	p.f("  lines:    %d", s.LineCount)
	p.f("  nodes:    %d", s.Nodes)
	p.f("  elements: %d", s.Elements)
	if s.Nodes > 0 {
		p.f("  bounds:   %s", formatBounds(s.Bounds))
	}
	for _, c := range s.ElementTypes {
		p.f("    %-6s %d", c.Name, c.Count)
	}
	for _, c := range s.NodeSets {
		p.f("  node set %s: %d nodes", c.Name, c.Count)
	}
	for _, c := range s.ElementSets {
		p.f("  element set %s: %d elements", c.Name, c.Count)
	}
	for _, m := range s.Materials {
		p.f("  material %s (%s): %d elements", m.Name, m.Kind, m.Elements)
	}
	if s.Unassigned > 0 {
		p.f("  unassigned elements: %d", s.Unassigned)
	}
	for _, step := range s.Steps {
		p.f("  step %s: %s", stepName(step.Name), strings.Join(step.Constraints, ", "))
	}
	for _, c := range s.Constraints {
		p.f("  %s %s: %d entries", c.Kind, c.Name, c.Entries)
	}
	for _, warning := range s.Warnings {
		p.f("  warning: %s", warning)
	}
	return p.err
}

// escapeCell keeps table cells on one row.
func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}

// Markdown writes s as a Markdown document with one table per section.
func Markdown(w io.Writer, s Summary) error {
	p := &printer{w: w}
	p.f("# %s", s.Name)
	p.f("")
	if s.Description != "" {
		for _, line := range strings.Split(s.Description, "\n") {
			p.f("> %s", line)
		}
		p.f("")
	}

	p.f("| Quantity | Value |")
	p.f("|---|---|")
	p.f("| Lines | %d |", s.LineCount)
	p.f("| Nodes | %d |", s.Nodes)
	p.f("| Elements | %d |", s.Elements)
	if s.Nodes > 0 {
		p.f("| Bounds | %s |", formatBounds(s.Bounds))
	}
	if s.Unassigned > 0 {
		p.f("| Unassigned elements | %d |", s.Unassigned)
	}
	p.f("")

	counts := func(title, column string, rows []Count) {
		if len(rows) == 0 {
			return
		}
		p.f("## %s", title)
		p.f("")
		p.f("| Name | %s |", column)
		p.f("|---|---|")
		for _, r := range rows {
			p.f("| %s | %d |", escapeCell(r.Name), r.Count)
		}
		p.f("")
	}
	counts("Element types", "Elements", s.ElementTypes)
	counts("Node sets", "Nodes", s.NodeSets)
	counts("Element sets", "Elements", s.ElementSets)

	if len(s.Materials) > 0 {
		p.f("## Materials")
		p.f("")
		p.f("| Name | Kind | Elements |")
		p.f("|---|---|---|")
		for _, m := range s.Materials {
			p.f("| %s | %s | %d |", escapeCell(m.Name), m.Kind, m.Elements)
		}
		p.f("")
	}

	if len(s.Steps) > 0 {
		p.f("## Steps")
		p.f("")
		p.f("| Step | Static | Constraints |")
		p.f("|---|---|---|")
		for _, step := range s.Steps {
			static := "no"
			if step.Static {
				static = "yes"
			}
			p.f("| %s | %s | %s |", escapeCell(stepName(step.Name)), static, escapeCell(strings.Join(step.Constraints, ", ")))
		}
		p.f("")
	}

	if len(s.Constraints) > 0 {
		p.f("## Constraints")
		p.f("")
		p.f("| Name | Kind | Entries |")
		p.f("|---|---|---|")
		for _, c := range s.Constraints {
			p.f("| %s | %s | %d |", escapeCell(c.Name), c.Kind, c.Entries)
		}
		p.f("")
	}

	if len(s.Warnings) > 0 {
		p.f("## Warnings")
		p.f("")
		for _, warning := range s.Warnings {
			p.f("- %s", warning)
		}
		p.f("")
	}
	return p.err
}

// HTML writes s as a standalone HTML page rendered from its Markdown form.
// Deck text reaches the page as literal text, never as markup.
func HTML(w io.Writer, s Summary) error {
	var buf bytes.Buffer
	if err := Markdown(&buf, escapeSummary(s)); err != nil {
		return err
	}

	p := &printer{w: w}
	p.f(`<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
  </head>
  <body>`, html.EscapeString(s.Name))
	p.f(`<div class="deckSummary">%s</div>`, md.Run(buf.Bytes()))
	p.f(`  </body>
</html>`)
	return p.err
}

// escapeSummary returns a copy of s with every string taken from the deck
// HTML-escaped. The Markdown renderer passes entities through unchanged.
func escapeSummary(s Summary) Summary {
	esc := html.EscapeString
	counts := func(in []Count) []Count {
		out := make([]Count, len(in))
		for i, c := range in {
			out[i] = Count{Name: esc(c.Name), Count: c.Count}
		}
		return out
	}

	s.Name = esc(s.Name)
	s.Description = esc(s.Description)
	s.ElementTypes = counts(s.ElementTypes)
	s.NodeSets = counts(s.NodeSets)
	s.ElementSets = counts(s.ElementSets)

	materials := make([]MaterialRow, len(s.Materials))
	for i, m := range s.Materials {
		materials[i] = MaterialRow{Name: esc(m.Name), Kind: m.Kind, Elements: m.Elements}
	}
	s.Materials = materials

	steps := make([]StepRow, len(s.Steps))
	for i, step := range s.Steps {
		names := make([]string, len(step.Constraints))
		for j, name := range step.Constraints {
			names[j] = esc(name)
		}
		steps[i] = StepRow{Name: esc(step.Name), Static: step.Static, Constraints: names}
	}
	s.Steps = steps

	constraints := make([]ConstraintRow, len(s.Constraints))
	for i, c := range s.Constraints {
		constraints[i] = ConstraintRow{Name: esc(c.Name), Kind: c.Kind, Entries: c.Entries}
	}
	s.Constraints = constraints

	warnings := make([]string, len(s.Warnings))
	for i, warning := range s.Warnings {
		warnings[i] = esc(warning)
	}
	s.Warnings = warnings
	return s
}

// Format names an output format accepted by Render.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Render writes s in the given format.
func Render(w io.Writer, format Format, s Summary) error {
	switch format {
	case FormatText:
		return Text(w, s)
	case FormatMarkdown:
		return Markdown(w, s)
	case FormatHTML:
		return HTML(w, s)
	}
	return fmt.Errorf("unknown report format %q", format)
}
