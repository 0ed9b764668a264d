package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/graphstudio/studio/internal/render"
	"github.com/graphstudio/studio/internal/simulation"
)

// Listing formats.
const (
	fmtJSON  = "json"
	fmtTable = "table"
	fmtQuiet = "quiet"
)

func formatJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func formatTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			width := 0
			if i < len(widths) {
				width = widths[i]
			}
			parts[i] = fmt.Sprintf("%-*s", width, cell)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	printRow(headers)
	seps := make([]string, len(headers))
	for i, width := range widths {
		seps[i] = strings.Repeat("-", width)
	}
	printRow(seps)
	for _, row := range rows {
		printRow(row)
	}
}

// writeGraph prints a laid-out query graph. Graph formats go through the
// exporters; table lists vertices with positions and quiet prints counts.
func writeGraph(w io.Writer, snap render.Snapshot, format string) error {
	switch format {
	case fmtQuiet:
		_, err := fmt.Fprintf(w, "%d vertices, %d edges\n", len(snap.Graph.Vertices), len(snap.Graph.Edges))
		return err
	case fmtTable:
		formatTable(w, []string{"ID", "ENCODING", "LABEL", "X", "Y"}, vertexRows(snap))
		return nil
	}

	f, err := render.ParseFormat(format)
	if err != nil {
		return err
	}
	out, err := render.Export(snap, f)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		_, err = io.WriteString(w, "\n")
	}
	return err
}

func vertexRows(snap render.Snapshot) [][]string {
	pos := make(map[int]simulation.VertexPosition)
	if snap.Frame != nil {
		for _, p := range snap.Frame.Vertices {
			pos[p.ID] = p
		}
	}

	rows := make([][]string, 0, len(snap.Graph.Vertices))
	for _, v := range snap.Graph.Vertices {
		x, y := "-", "-"
		if p, ok := pos[v.ID]; ok {
			x = strconv.FormatFloat(p.X, 'f', 1, 64)
			y = strconv.FormatFloat(p.Y, 'f', 1, 64)
		}
		rows = append(rows, []string{strconv.Itoa(v.ID), string(v.Encoding), v.Label, x, y})
	}
	return rows
}

// validGraphFormat reports whether format is accepted by writeGraph.
func validGraphFormat(format string) bool {
	if format == fmtTable || format == fmtQuiet {
		return true
	}
	_, err := render.ParseFormat(format)
	return err == nil
}
