package driver

import (
	"encoding/json"
	"strings"
)

// TransactionType selects the kind of transaction to open.
type TransactionType string

// Transaction types.
const (
	TransactionRead   TransactionType = "read"
	TransactionWrite  TransactionType = "write"
	TransactionSchema TransactionType = "schema"
)

// Concept kinds as reported by the server.
const (
	KindEntity        = "entity"
	KindRelation      = "relation"
	KindAttribute     = "attribute"
	KindEntityType    = "entityType"
	KindRelationType  = "relationType"
	KindAttributeType = "attributeType"
	KindRoleType      = "roleType"
	KindThingType     = "thingType"
	KindValue         = "value"
)

// Answer types of a query response.
const (
	AnswerOK               = "ok"
	AnswerConceptRows      = "conceptRows"
	AnswerConceptDocuments = "conceptDocuments"
)

// Concept is a thing, type or value in a query answer.
type Concept struct {
	Kind      string          `json:"kind"`
	IID       string          `json:"iid,omitempty"`
	Label     string          `json:"label,omitempty"`
	Type      *Concept        `json:"type,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	ValueType string          `json:"valueType,omitempty"`
}

// IsThing reports whether the concept is an entity, relation or attribute instance.
func (c *Concept) IsThing() bool {
	switch c.Kind {
	case KindEntity, KindRelation, KindAttribute:
		return true
	}
	return false
}

// IsType reports whether the concept is a schema type, including role types.
func (c *Concept) IsType() bool {
	switch c.Kind {
	case KindEntityType, KindRelationType, KindAttributeType, KindRoleType, KindThingType:
		return true
	}
	return false
}

// IsRelation reports whether the concept is a relation instance.
func (c *Concept) IsRelation() bool { return c.Kind == KindRelation }

// IsAttribute reports whether the concept is an attribute instance.
func (c *Concept) IsAttribute() bool { return c.Kind == KindAttribute }

// IsRoleType reports whether the concept is a role type.
func (c *Concept) IsRoleType() bool { return c.Kind == KindRoleType }

// IsValue reports whether the concept is a bare computed value.
func (c *Concept) IsValue() bool { return c.Kind == KindValue }

// TypeLabel returns the label of a thing's type, or the label of a type.
func (c *Concept) TypeLabel() string {
	if c.IsType() {
		return c.Label
	}
	if c.Type != nil {
		return c.Type.Label
	}
	return ""
}

// ValueString renders the concept's value. Strings are unquoted; other JSON values
// keep their literal form.
func (c *Concept) ValueString() string {
	if len(c.Value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(c.Value, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(c.Value))
}

// ConceptRow maps query variables to the concepts bound in one answer.
// Optional variables that did not match are nil.
type ConceptRow struct {
	Data map[string]*Concept `json:"data"`
}

// QueryResponse is the result of running a query.
type QueryResponse struct {
	QueryType  string       `json:"queryType"`
	AnswerType string       `json:"answerType"`
	Answers    []ConceptRow `json:"answers,omitempty"`
	Warning    *string      `json:"warning,omitempty"`
}

// Database describes a database on the server.
type Database struct {
	Name string `json:"name"`
}

type databasesResponse struct {
	Databases []Database `json:"databases"`
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token string `json:"token"`
}

type openTransactionRequest struct {
	DatabaseName    string          `json:"databaseName"`
	TransactionType TransactionType `json:"transactionType"`
}

type openTransactionResponse struct {
	TransactionID string `json:"transactionId"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type oneShotQueryRequest struct {
	DatabaseName    string          `json:"databaseName"`
	TransactionType TransactionType `json:"transactionType"`
	Query           string          `json:"query"`
	Commit          bool            `json:"commit"`
}
