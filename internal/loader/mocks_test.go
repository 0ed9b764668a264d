package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/graphstudio/studio/driver"
)

// mockTx answers queries from a fixed table and records what it was asked.
type mockTx struct {
	mu      sync.Mutex
	queries []string
	closed  bool

	answers map[string][]driver.ConceptRow
	errs    map[string]error
}

func (m *mockTx) Query(_ context.Context, query string) (*driver.QueryResponse, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if err := m.errs[query]; err != nil {
		return nil, err
	}
	return &driver.QueryResponse{
		QueryType:  "read",
		AnswerType: driver.AnswerConceptRows,
		Answers:    m.answers[query],
	}, nil
}

func (m *mockTx) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockTx) asked(query string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.queries {
		if q == query {
			return true
		}
	}
	return false
}

type mockOpener struct {
	tx      Transaction
	openErr error
}

func (m *mockOpener) Open(context.Context, string) (Transaction, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m.tx, nil
}

func row(vars ...any) driver.ConceptRow {
	r := driver.ConceptRow{Data: map[string]*driver.Concept{}}
	for i := 0; i+1 < len(vars); i += 2 {
		r.Data[vars[i].(string)] = vars[i+1].(*driver.Concept)
	}
	return r
}

func entity(iid, typ string) *driver.Concept {
	return &driver.Concept{Kind: driver.KindEntity, IID: iid, Type: &driver.Concept{Kind: driver.KindEntityType, Label: typ}}
}

func relation(iid, typ string) *driver.Concept {
	return &driver.Concept{Kind: driver.KindRelation, IID: iid, Type: &driver.Concept{Kind: driver.KindRelationType, Label: typ}}
}

func attribute(typ string, value any) *driver.Concept {
	raw, _ := json.Marshal(value)
	return &driver.Concept{Kind: driver.KindAttribute, Value: raw, Type: &driver.Concept{Kind: driver.KindAttributeType, Label: typ}}
}

func typ(kind, label string) *driver.Concept {
	return &driver.Concept{Kind: kind, Label: label}
}

func ownsQuery(label string) string  { return fmt.Sprintf("match $t label %s; $t owns $a;", label) }
func playsQuery(label string) string { return fmt.Sprintf("match $t label %s; $t plays $role;", label) }
func subQuery(label string) string   { return fmt.Sprintf("match $t label %s; $t sub! $s;", label) }
func hasQuery(iid string) string     { return fmt.Sprintf("match $x iid %s; $x has $a;", iid) }
func playersQuery(iid string) string {
	return fmt.Sprintf("match $r iid %s; $r links ($role: $p);", iid)
}
