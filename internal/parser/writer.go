package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/numerics88/inpdeck/internal/femodel"
)

// idsPerLine is the number of ids written on each line of a set.
const idsPerLine = 10

// WriteDeck writes m as an Abaqus input deck that Reader reads back into an
// equivalent model. Names containing spaces are written with underscores.
func WriteDeck(w io.Writer, m *femodel.Model) error {
	bw := bufio.NewWriter(w)
	dw := &deckWriter{w: bw}

	dw.heading(m)
	dw.nodes(m)
	dw.elements(m)
	dw.materials(m)
	dw.sets("NSET", m.NodeSets())
	dw.sets("ELSET", m.ElementSets())
	dw.sections(m)
	dw.steps(m)

	if dw.err != nil {
		return dw.err
	}
	return bw.Flush()
}

// deckWriter latches the first write error so the section writers can stay
// linear.
type deckWriter struct {
	w   io.Writer
	err error
}

func (d *deckWriter) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, args...)
}

func underscores(s string) string {
	return strings.ReplaceAll(s, " ", "_")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// heading writes the history as comments ahead of the first keyword, where a
// reader skips them, then the description.
func (d *deckWriter) heading(m *femodel.Model) {
	for _, line := range m.History() {
		d.printf("** %s\n", line)
	}
	d.printf("*HEADING\n")
	if desc := m.Description(); desc != "" {
		for _, line := range strings.Split(desc, "\n") {
			// Keep description lines from being read back as keywords.
			if strings.HasPrefix(line, "*") {
				line = " " + line
			}
			d.printf("%s\n", line)
		}
	}
}

func (d *deckWriter) nodes(m *femodel.Model) {
	nodes := m.Nodes()
	if len(nodes) == 0 {
		return
	}
	d.printf("*NODE\n")
	for _, n := range nodes {
		d.printf("%d, %s, %s, %s\n", n.ID, formatFloat(n.X), formatFloat(n.Y), formatFloat(n.Z))
	}
}

// elements writes one ELEMENT section per run of same-typed elements.
func (d *deckWriter) elements(m *femodel.Model) {
	current := femodel.ElementUnknown
	for _, e := range m.Elements() {
		if e.Type != current {
			d.printf("*ELEMENT, TYPE=%s\n", abaqusElementNames[e.Type])
			current = e.Type
		}
		// 16 entries per line at most; continuation uses a trailing comma.
		d.printf("%d", e.ID)
		for i, n := range e.Nodes {
			if (i+1)%16 == 0 {
				d.printf(",\n%d", n)
			} else {
				d.printf(", %d", n)
			}
		}
		d.printf("\n")
	}
}

func (d *deckWriter) materials(m *femodel.Model) {
	for _, mat := range m.Materials() {
		name := underscores(mat.Name)
		switch mat.Kind {
		case femodel.Isotropic:
			d.printf("*MATERIAL, NAME=%s\n*ELASTIC, TYPE=ISOTROPIC\n%s, %s\n",
				name, formatFloat(mat.YoungsModulus), formatFloat(mat.PoissonsRatio))
		case femodel.Orthotropic:
			c := mat.Compliance()
			d.printf("*MATERIAL, NAME=%s\n*ELASTIC, TYPE=ORTHOTROPIC\n", name)
			parts := make([]string, 8)
			for i := range parts {
				parts[i] = formatFloat(c[i])
			}
			d.printf("%s\n%s\n", strings.Join(parts, ", "), formatFloat(c[femodel.D2323]))
		}
	}
}

func (d *deckWriter) sets(keyword string, sets []femodel.Set) {
	for _, s := range sets {
		d.printf("*%s, %s=%s\n", keyword, keyword, underscores(s.Name))
		d.indexList(s.IDs)
	}
}

func (d *deckWriter) indexList(ids []int) {
	for i, id := range ids {
		if i != 0 {
			if i%idsPerLine == 0 {
				d.printf(",\n")
			} else {
				d.printf(", ")
			}
		}
		d.printf("%d", id)
	}
	if len(ids) > 0 {
		d.printf("\n")
	}
}

func (d *deckWriter) sections(m *femodel.Model) {
	for _, s := range m.Sections() {
		d.printf("*SOLID SECTION, ELSET=%s, MATERIAL=%s\n", underscores(s.ElementSet), underscores(s.Material))
	}
}

func (d *deckWriter) steps(m *femodel.Model) {
	constraints := m.Constraints()
	byName := make(map[string]femodel.Constraint, len(constraints))
	for _, c := range constraints {
		byName[c.Name] = c
	}

	for _, s := range m.Steps() {
		d.printf("*STEP")
		if s.Name != "" {
			d.printf(", NAME=%s", underscores(s.Name))
		}
		d.printf("\n")
		if s.Static != nil {
			p := s.Static
			d.printf("*STATIC\n%s, %s, %s, %s\n", formatFloat(p.InitialIncrement), formatFloat(p.Period),
				formatFloat(p.MinIncrement), formatFloat(p.MaxIncrement))
		}
		for _, name := range s.Constraints {
			if c, ok := byName[name]; ok {
				d.constraint(c)
				delete(byName, name)
			}
		}
		d.printf("*END STEP\n")
	}

	// Constraints made outside any step go into a trailing static step.
	var rest []femodel.Constraint
	for _, c := range constraints {
		if _, ok := byName[c.Name]; ok {
			rest = append(rest, c)
		}
	}
	if len(rest) == 0 {
		return
	}
	d.printf("*STEP\n*STATIC\n")
	for _, c := range rest {
		d.constraint(c)
	}
	d.printf("*END STEP\n")
}

func (d *deckWriter) constraint(c femodel.Constraint) {
	name := underscores(c.Name)
	switch c.Kind {
	case femodel.Displacement:
		d.printf("*BOUNDARY, TYPE=DISPLACEMENT, NAME=%s\n", name)
		for _, e := range c.Entries {
			d.printf("%d, %d, , %s\n", e.Node, e.DOF, formatFloat(e.Value))
		}
	case femodel.Force:
		d.printf("*CLOAD, NAME=%s\n", name)
		for _, e := range c.Entries {
			d.printf("%d, %d, %s\n", e.Node, e.DOF, formatFloat(e.Value))
		}
	}
}
