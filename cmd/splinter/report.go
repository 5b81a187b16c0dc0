package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/chazu/splinter/pkg/decompose"
	"github.com/chazu/splinter/pkg/kernel"
	"github.com/chazu/splinter/pkg/tessellate"
)

// report is the printable outcome of one decompose command.
type report struct {
	Model      string            `yaml:"model"`
	Level      string            `yaml:"level"`
	Strategy   string            `yaml:"strategy"`
	Faces      int               `yaml:"faces"`
	Components []componentReport `yaml:"components"`
	Trace      []stepReport      `yaml:"trace"`
}

type componentReport struct {
	Name      string  `yaml:"name"`
	ID        string  `yaml:"id"`
	Kind      string  `yaml:"kind"`
	Color     string  `yaml:"color"`
	Faces     []int   `yaml:"faces,flow"`
	Volume    float64 `yaml:"volume"`
	Triangles int     `yaml:"triangles"`
}

type stepReport struct {
	State      string `yaml:"state"`
	Strategy   string `yaml:"strategy"`
	Components int    `yaml:"components"`
}

func newReport(model string, res *decompose.Result, meshes []*kernel.Mesh) *report {
	byName := make(map[string]*kernel.Mesh, len(meshes))
	for _, m := range meshes {
		byName[m.Component] = m
	}

	r := &report{
		Model:    model,
		Level:    res.Level.String(),
		Strategy: res.Strategy.String(),
		Faces:    res.FaceCount,
	}
	for i, c := range res.Components {
		cr := componentReport{
			Name:   tessellate.Name(i, c),
			ID:     c.ID.String(),
			Kind:   c.Kind.String(),
			Color:  tessellate.Color(i),
			Faces:  c.Faces,
			Volume: c.Volume,
		}
		if m, ok := byName[cr.Name]; ok {
			cr.Triangles = m.TriangleCount()
		}
		r.Components = append(r.Components, cr)
	}
	for _, s := range res.Trace {
		r.Trace = append(r.Trace, stepReport{
			State:      s.State.String(),
			Strategy:   s.Strategy.String(),
			Components: s.Components,
		})
	}
	return r
}

func (r *report) writeYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func (r *report) writeText(w io.Writer) error {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s: %d faces -> %d components", r.Model, r.Faces, len(r.Components))))
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("level %s, strategy %s", r.Level, r.Strategy)))
	fmt.Fprintln(w)
	for _, c := range r.Components {
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(c.Color)).Render("  ")
		fmt.Fprintf(w, "%s %-12s %-8s faces=%-4d volume=%-10.4g triangles=%d\n",
			swatch, c.Name, c.Color, len(c.Faces), c.Volume, c.Triangles)
	}
	return nil
}
