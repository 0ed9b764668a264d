package render

import "github.com/graphstudio/studio/internal/models"

// Colors maps each vertex encoding to its fill colour.
var Colors = map[models.VertexEncoding]string{
	models.EncodingEntity:        "#ff87dc",
	models.EncodingRelation:      "#ffe4a7",
	models.EncodingAttribute:     "#56c0ff",
	models.EncodingEntityType:    "#d94fb4",
	models.EncodingRelationType:  "#e6b94d",
	models.EncodingAttributeType: "#2f8fd1",
	models.EncodingThingType:     "#9a9a9a",
}

// InferredColor is the stroke colour of inferred edges.
const InferredColor = "#00e0e0"

// ColorOf returns the fill colour for enc, grey when unknown.
func ColorOf(enc models.VertexEncoding) string {
	if c, ok := Colors[enc]; ok {
		return c
	}
	return Colors[models.EncodingThingType]
}
