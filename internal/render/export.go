// Package render provides rendering surfaces for the layout and exports of
// positioned query graphs.
package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/graphstudio/studio/internal/models"
	"github.com/graphstudio/studio/internal/simulation"
)

// Format is an export format.
type Format string

// Export formats.
const (
	FormatJSON    Format = "json"
	FormatD3      Format = "d3"
	FormatDOT     Format = "dot"
	FormatMermaid Format = "mermaid"
)

// ParseFormat validates a format name. The empty string means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatD3, FormatDOT, FormatMermaid:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	case FormatMermaid:
		return "text/plain; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// Snapshot is a graph together with the positions of its last frame.
type Snapshot struct {
	Graph models.GraphData  `json:"graph"`
	Frame *simulation.Frame `json:"frame,omitempty"`
}

// Export renders snap in the requested format.
func Export(snap Snapshot, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		out, err := json.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("marshal snapshot: %w", err)
		}
		return out, nil
	case FormatD3:
		return exportD3(snap)
	case FormatDOT:
		return []byte(exportDOT(snap)), nil
	case FormatMermaid:
		return []byte(exportMermaid(snap)), nil
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

type d3Node struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Group    string  `json:"group"`
	Color    string  `json:"color"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Inferred bool    `json:"inferred,omitempty"`
}

type d3Link struct {
	ID       int    `json:"id"`
	Source   int    `json:"source"`
	Target   int    `json:"target"`
	Label    string `json:"label"`
	Inferred bool   `json:"inferred,omitempty"`
}

type d3Graph struct {
	Nodes []d3Node `json:"nodes"`
	Links []d3Link `json:"links"`
}

// exportD3 emits the nodes/links shape consumed by d3-force, seeded with the
// layout's positions so a browser can continue the simulation.
func exportD3(snap Snapshot) ([]byte, error) {
	pos := positions(snap.Frame)
	g := d3Graph{
		Nodes: make([]d3Node, 0, len(snap.Graph.Vertices)),
		Links: make([]d3Link, 0, len(snap.Graph.Edges)),
	}
	for _, v := range snap.Graph.Vertices {
		p := pos[v.ID]
		g.Nodes = append(g.Nodes, d3Node{
			ID:       v.ID,
			Name:     v.Label,
			Group:    string(v.Encoding),
			Color:    ColorOf(v.Encoding),
			X:        p.X,
			Y:        p.Y,
			Inferred: v.Inferred,
		})
	}
	for _, e := range snap.Graph.Edges {
		g.Links = append(g.Links, d3Link{
			ID:       e.ID,
			Source:   e.Source,
			Target:   e.Target,
			Label:    e.Label,
			Inferred: e.Highlight == models.HighlightInferred,
		})
	}
	out, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal d3 graph: %w", err)
	}
	return out, nil
}

func positions(f *simulation.Frame) map[int]simulation.VertexPosition {
	pos := make(map[int]simulation.VertexPosition)
	if f == nil {
		return pos
	}
	for _, p := range f.Vertices {
		pos[p.ID] = p
	}
	return pos
}

var dotShapes = map[models.VertexEncoding]string{
	models.EncodingEntity:        "box",
	models.EncodingRelation:      "diamond",
	models.EncodingAttribute:     "ellipse",
	models.EncodingEntityType:    "box",
	models.EncodingRelationType:  "diamond",
	models.EncodingAttributeType: "ellipse",
	models.EncodingThingType:     "box",
}

// exportDOT creates a Graphviz digraph. Vertices carry pinned positions when a
// frame is available so that neato -n reproduces the layout.
func exportDOT(snap Snapshot) string {
	var sb strings.Builder
	pos := positions(snap.Frame)

	sb.WriteString("digraph Query {\n")
	sb.WriteString("    node [style=filled, fontname=\"Helvetica\"];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10];\n")
	sb.WriteString("\n")

	for _, v := range snap.Graph.Vertices {
		attrs := []string{
			"label=\"" + escapeDOTLabel(v.ShortLabel) + "\"",
			"tooltip=\"" + escapeDOTLabel(v.Label) + "\"",
			"shape=" + dotShapes[v.Encoding],
			"fillcolor=\"" + ColorOf(v.Encoding) + "\"",
		}
		if p, ok := pos[v.ID]; ok {
			attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(p.X), fmtFloat(-p.Y)))
		}
		fmt.Fprintf(&sb, "    v%d [%s];\n", v.ID, strings.Join(attrs, ", "))
	}

	if len(snap.Graph.Edges) > 0 {
		sb.WriteString("\n")
	}
	for _, e := range snap.Graph.Edges {
		style := ""
		if e.Highlight == models.HighlightInferred {
			style = fmt.Sprintf(", color=\"%s\", style=dashed", InferredColor)
		}
		fmt.Fprintf(&sb, "    v%d -> v%d [label=\"%s\"%s];\n", e.Source, e.Target, escapeDOTLabel(e.Label), style)
	}

	sb.WriteString("}\n")
	return sb.String()
}

// exportMermaid creates a Mermaid flowchart with one class per encoding.
func exportMermaid(snap Snapshot) string {
	var sb strings.Builder
	sb.WriteString("flowchart LR\n")

	for _, v := range snap.Graph.Vertices {
		open, closing := mermaidShape(v.Encoding)
		fmt.Fprintf(&sb, "    v%d%s\"%s\"%s:::%s\n", v.ID, open, escapeMermaidLabel(v.ShortLabel), closing, v.Encoding)
	}

	if len(snap.Graph.Edges) > 0 {
		sb.WriteString("\n")
	}
	for _, e := range snap.Graph.Edges {
		arrow := "-->"
		if e.Highlight == models.HighlightInferred {
			arrow = "-.->"
		}
		if e.Label == "" {
			fmt.Fprintf(&sb, "    v%d %s v%d\n", e.Source, arrow, e.Target)
			continue
		}
		fmt.Fprintf(&sb, "    v%d %s|\"%s\"| v%d\n", e.Source, arrow, escapeMermaidLabel(e.Label), e.Target)
	}

	sb.WriteString("\n")
	for _, enc := range []models.VertexEncoding{
		models.EncodingEntity, models.EncodingRelation, models.EncodingAttribute,
		models.EncodingEntityType, models.EncodingRelationType, models.EncodingAttributeType,
		models.EncodingThingType,
	} {
		fmt.Fprintf(&sb, "    classDef %s fill:%s,stroke:#333\n", enc, ColorOf(enc))
	}
	return sb.String()
}

func mermaidShape(enc models.VertexEncoding) (string, string) {
	switch enc {
	case models.EncodingRelation, models.EncodingRelationType:
		return "{", "}"
	case models.EncodingAttribute, models.EncodingAttributeType:
		return "([", "])"
	}
	return "[", "]"
}

func escapeDOTLabel(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

func escapeMermaidLabel(s string) string {
	s = strings.ReplaceAll(s, `"`, "#quot;")
	return strings.ReplaceAll(s, "\n", " ")
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
