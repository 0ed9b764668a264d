package graph

import (
	"fmt"

	"github.com/graphstudio/studio/driver"
	"github.com/graphstudio/studio/internal/models"
)

const (
	relationShortLabelLen = 22
	shortLabelLen         = 26

	relationWidth  = 110
	relationHeight = 55
	vertexWidth    = 100
	vertexHeight   = 35
)

// EncodingFor maps a concept kind to its vertex encoding.
func EncodingFor(c *driver.Concept) (models.VertexEncoding, error) {
	switch c.Kind {
	case driver.KindEntity:
		return models.EncodingEntity, nil
	case driver.KindRelation:
		return models.EncodingRelation, nil
	case driver.KindAttribute:
		return models.EncodingAttribute, nil
	case driver.KindEntityType:
		return models.EncodingEntityType, nil
	case driver.KindRelationType:
		return models.EncodingRelationType, nil
	case driver.KindAttributeType:
		return models.EncodingAttributeType, nil
	case driver.KindThingType:
		return models.EncodingThingType, nil
	}
	return "", fmt.Errorf("concept of kind %q has no vertex encoding", c.Kind)
}

// LabelFor renders a concept's vertex label: the type label for types and
// non-attribute things, "type: value" for attributes.
func LabelFor(c *driver.Concept) string {
	if c.IsAttribute() {
		return c.TypeLabel() + ": " + c.ValueString()
	}
	return c.TypeLabel()
}

// VertexFor builds the vertex for a concept with the given id.
func VertexFor(c *driver.Concept, id int) (models.VertexData, error) {
	enc, err := EncodingFor(c)
	if err != nil {
		return models.VertexData{}, err
	}
	return NewVertex(id, enc, LabelFor(c)), nil
}

// NewVertex sizes and abbreviates a vertex for its encoding.
func NewVertex(id int, enc models.VertexEncoding, label string) models.VertexData {
	v := models.VertexData{ID: id, Encoding: enc, Label: label}
	if enc.IsRelationLike() {
		v.ShortLabel = truncate(label, relationShortLabelLen)
		v.Width, v.Height = relationWidth, relationHeight
	} else {
		v.ShortLabel = truncate(label, shortLabelLen)
		v.Width, v.Height = vertexWidth, vertexHeight
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
