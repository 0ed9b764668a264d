package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/graphstudio/studio/internal/models"
	"github.com/graphstudio/studio/internal/render"
)

// Glyphs per vertex encoding. Types use hollow shapes.
var glyphs = map[models.VertexEncoding]rune{
	models.EncodingEntity:        '■',
	models.EncodingRelation:      '◆',
	models.EncodingAttribute:     '●',
	models.EncodingEntityType:    '□',
	models.EncodingRelationType:  '◇',
	models.EncodingAttributeType: '○',
	models.EncodingThingType:     '△',
}

const (
	edgeRune   = '·'
	edgeColor  = "#5c5c5c"
	labelColor = "#bcbcbc"
)

func glyphOf(enc models.VertexEncoding) rune {
	if g, ok := glyphs[enc]; ok {
		return g
	}
	return '?'
}

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#f0f0f0"}).
			Background(lipgloss.AdaptiveColor{Light: "#d0d0d0", Dark: "#303030"}).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(render.ColorOf(models.EncodingEntity)))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff5f5f"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#6c6c6c", Dark: "#8a8a8a"})
)
