// Package models defines data types for the query result graph.
package models

// VertexEncoding is the visual class of a vertex.
type VertexEncoding string

// Vertex encodings. Things first, then their types.
const (
	EncodingEntity        VertexEncoding = "entity"
	EncodingRelation      VertexEncoding = "relation"
	EncodingAttribute     VertexEncoding = "attribute"
	EncodingEntityType    VertexEncoding = "entityType"
	EncodingRelationType  VertexEncoding = "relationType"
	EncodingAttributeType VertexEncoding = "attributeType"
	EncodingThingType     VertexEncoding = "thingType"
)

// IsType reports whether the encoding describes a schema type rather than an instance.
func (e VertexEncoding) IsType() bool {
	switch e {
	case EncodingEntityType, EncodingRelationType, EncodingAttributeType, EncodingThingType:
		return true
	}
	return false
}

// IsRelationLike reports whether vertices of this encoding are drawn with relation geometry.
func (e VertexEncoding) IsRelationLike() bool {
	return e == EncodingRelation || e == EncodingRelationType
}

// Valid reports whether e is one of the known encodings.
func (e VertexEncoding) Valid() bool {
	switch e {
	case EncodingEntity, EncodingRelation, EncodingAttribute,
		EncodingEntityType, EncodingRelationType, EncodingAttributeType, EncodingThingType:
		return true
	}
	return false
}

// VertexData is one vertex of a query result graph. Immutable once created.
type VertexData struct {
	ID         int            `json:"id"`
	Encoding   VertexEncoding `json:"encoding"`
	Label      string         `json:"label"`
	ShortLabel string         `json:"short_label"`
	Width      float64        `json:"width"`
	Height     float64        `json:"height"`
	Inferred   bool           `json:"inferred,omitempty"`
}
