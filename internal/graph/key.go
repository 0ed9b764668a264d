package graph

import (
	"github.com/graphstudio/studio/driver"
)

// KeyKind separates the thing and type registries.
type KeyKind uint8

// Registries.
const (
	KindThing KeyKind = iota + 1
	KindType
)

// Key identifies a concept across answers.
type Key struct {
	Kind  KeyKind
	Value string
}

// ThingKey keys an entity or relation by IID.
func ThingKey(iid string) Key { return Key{Kind: KindThing, Value: iid} }

// AttributeKey keys an attribute by its type label and value.
func AttributeKey(typeLabel, value string) Key {
	return Key{Kind: KindThing, Value: typeLabel + ":" + value}
}

// TypeKey keys a schema type by label.
func TypeKey(label string) Key { return Key{Kind: KindType, Value: label} }

// KeyFor returns the registry key of a concept. Role types and values have none.
func KeyFor(c *driver.Concept) (Key, bool) {
	if c == nil {
		return Key{}, false
	}
	switch c.Kind {
	case driver.KindEntity, driver.KindRelation:
		if c.IID == "" {
			return Key{}, false
		}
		return ThingKey(c.IID), true
	case driver.KindAttribute:
		return AttributeKey(c.TypeLabel(), c.ValueString()), true
	case driver.KindEntityType, driver.KindRelationType, driver.KindAttributeType, driver.KindThingType:
		return TypeKey(c.Label), true
	}
	return Key{}, false
}

func (k Key) String() string {
	if k.Kind == KindType {
		return "type:" + k.Value
	}
	return "thing:" + k.Value
}
