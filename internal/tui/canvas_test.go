package tui

import (
	"strings"
	"testing"
)

func TestCanvas_LineEndpoints(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           int
	}{
		{"horizontal", 0, 0, 9, 0, 10},
		{"vertical", 2, 0, 2, 4, 5},
		{"diagonal", 0, 0, 4, 4, 5},
		{"reversed", 9, 4, 0, 0, 10},
		{"single point", 3, 3, 3, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanvas(10, 5)
			c.Line(tt.x0, tt.y0, tt.x1, tt.y1, '*', "")

			if c.At(tt.x0, tt.y0) != '*' || c.At(tt.x1, tt.y1) != '*' {
				t.Fatalf("endpoints not drawn:\n%s", c.Plain())
			}
			if got := strings.Count(c.Plain(), "*"); got != tt.want {
				t.Errorf("drew %d cells, want %d:\n%s", got, tt.want, c.Plain())
			}
		})
	}
}

func TestCanvas_LineClipsAndKeepsOccupiedCells(t *testing.T) {
	c := NewCanvas(5, 1)
	c.Set(2, 0, 'X', "")
	c.Line(-3, 0, 8, 0, '.', "")

	if got := c.Plain(); got != "..X.." {
		t.Errorf("got %q", got)
	}
}

func TestCanvas_Text(t *testing.T) {
	c := NewCanvas(8, 1)
	c.Set(5, 0, '#', "")

	if c.Text(0, 0, "abc", "") != true {
		t.Error("expected text to fit")
	}
	if c.Text(3, 0, "xyz", "") {
		t.Error("expected text to stop at an occupied cell")
	}
	if got := c.Plain(); got != "abcxy#  " {
		t.Errorf("got %q", got)
	}
}

func TestCanvas_RenderKeepsText(t *testing.T) {
	c := NewCanvas(6, 2)
	c.Text(0, 0, "ab", "#ff0000")
	c.Text(2, 0, "cd", "#00ff00")
	c.Set(0, 1, 'z', "")

	out := c.Render()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected two lines, got %q", out)
	}
	for _, want := range []string{"ab", "cd", "z"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q: %q", want, out)
		}
	}
}

func TestNewCanvas_NegativeSize(t *testing.T) {
	c := NewCanvas(-1, -5)
	if w, h := c.Size(); w != 0 || h != 0 {
		t.Errorf("size = %dx%d", w, h)
	}
	c.Set(0, 0, 'x', "")
	if c.Render() != "" {
		t.Error("expected empty render")
	}
}
