package loader

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/graphstudio/studio/driver"
	"github.com/graphstudio/studio/internal/graph"
	"github.com/graphstudio/studio/internal/models"
)

// Edge labels for schema and ownership edges.
const (
	labelHas  = "has"
	labelOwns = "owns"
	labelSub  = "sub"
)

var (
	iidPattern   = regexp.MustCompile(`^0x[0-9a-fA-F]+$`)
	labelPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-]*(:[A-Za-z_][A-Za-z0-9_\-]*)?$`)
)

// task is one follow-up query issued for a newly seen concept.
type task struct {
	name   string
	query  string
	vertex int
	handle func(row driver.ConceptRow, vertex int, ex *explorer)
}

// tasksFor lists the follow-up queries for a concept that has just become a vertex.
func tasksFor(c *driver.Concept, vertex int) []task {
	switch c.Kind {
	case driver.KindEntity, driver.KindRelation:
		if !iidPattern.MatchString(c.IID) {
			return nil
		}
		tasks := []task{{
			name:   "attributes",
			query:  fmt.Sprintf("match $x iid %s; $x has $a;", c.IID),
			vertex: vertex,
			handle: handleOwnedAttribute,
		}}
		if c.IsRelation() {
			tasks = append(tasks, task{
				name:   "role players",
				query:  fmt.Sprintf("match $r iid %s; $r links ($role: $p);", c.IID),
				vertex: vertex,
				handle: handleRolePlayer,
			})
		}
		return tasks

	case driver.KindEntityType, driver.KindRelationType, driver.KindAttributeType:
		if !labelPattern.MatchString(c.Label) {
			return nil
		}
		tasks := []task{{
			name:   "supertype",
			query:  fmt.Sprintf("match $t label %s; $t sub! $s;", c.Label),
			vertex: vertex,
			handle: handleSupertype,
		}}
		if c.Kind != driver.KindAttributeType {
			tasks = append(tasks,
				task{
					name:   "owns",
					query:  fmt.Sprintf("match $t label %s; $t owns $a;", c.Label),
					vertex: vertex,
					handle: handleOwns,
				},
				task{
					name:   "plays",
					query:  fmt.Sprintf("match $t label %s; $t plays $role;", c.Label),
					vertex: vertex,
					handle: handlePlays,
				},
			)
		}
		return tasks
	}
	return nil
}

// handleOwnedAttribute links an owner to an attribute. The edge stays incomplete
// until the attribute itself is part of the answer stream.
func handleOwnedAttribute(row driver.ConceptRow, owner int, ex *explorer) {
	key, ok := graph.KeyFor(row.Data["a"])
	if !ok {
		return
	}
	ex.builder.Connect(owner, key, models.DirectionOutgoing, labelHas, models.HighlightNone)
}

// handleRolePlayer adds the player and links the relation to it with the role
// name. Players are not explored further, so exploration stays one hop deep.
func handleRolePlayer(row driver.ConceptRow, relation int, ex *explorer) {
	id, _, ok := ex.add(row.Data["p"])
	if !ok {
		return
	}
	ex.builder.Link(relation, id, roleName(row.Data["role"]), models.HighlightNone)
}

func handleOwns(row driver.ConceptRow, owner int, ex *explorer) {
	a := row.Data["a"]
	if a == nil {
		return
	}
	ex.builder.Connect(owner, graph.TypeKey(a.Label), models.DirectionOutgoing, labelOwns, models.HighlightNone)
}

// handlePlays draws the role edge from the relation type that scopes the role.
func handlePlays(row driver.ConceptRow, player int, ex *explorer) {
	role := row.Data["role"]
	if role == nil {
		return
	}
	scope, name, ok := strings.Cut(role.Label, ":")
	if !ok {
		return
	}
	ex.builder.Connect(player, graph.TypeKey(scope), models.DirectionIncoming, name, models.HighlightNone)
}

func handleSupertype(row driver.ConceptRow, sub int, ex *explorer) {
	s := row.Data["s"]
	if s == nil {
		return
	}
	ex.builder.Connect(sub, graph.TypeKey(s.Label), models.DirectionOutgoing, labelSub, models.HighlightNone)
}

// roleName strips the relation scope from a role label.
func roleName(role *driver.Concept) string {
	if role == nil {
		return ""
	}
	if _, name, ok := strings.Cut(role.Label, ":"); ok {
		return name
	}
	return role.Label
}
