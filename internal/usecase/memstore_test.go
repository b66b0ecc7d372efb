package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/devlink-app/devlink/internal/domain"
	"github.com/devlink-app/devlink/store"
)

// memStore is an in-memory store.Store with per-collection fault injection.
type memStore struct {
	docs map[string]map[string]json.RawMessage

	failList        map[string]bool
	failEquality    map[string]bool
	membershipCalls [][]string
}

func newMemStore() *memStore {
	return &memStore{
		docs:         map[string]map[string]json.RawMessage{},
		failList:     map[string]bool{},
		failEquality: map[string]bool{},
	}
}

func (m *memStore) seed(t *testing.T, collection, id string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("seed %s/%s: %v", collection, id, err)
	}
	if m.docs[collection] == nil {
		m.docs[collection] = map[string]json.RawMessage{}
	}
	m.docs[collection][id] = data
}

func (m *memStore) field(data json.RawMessage, field string) string {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	s, _ := body[field].(string)
	return s
}

func (m *memStore) GetByID(ctx context.Context, collection, id string) (store.Document, error) {
	data, ok := m.docs[collection][id]
	if !ok {
		return store.Document{}, domain.NotFoundError{Resource: collection + " document"}
	}
	return store.Document{ID: id, Data: data}, nil
}

func (m *memStore) QueryByEquality(ctx context.Context, collection, field, value string) ([]store.Document, error) {
	if m.failEquality[collection] {
		return nil, fmt.Errorf("equality query unavailable")
	}
	var out []store.Document
	for id, data := range m.docs[collection] {
		if m.field(data, field) == value {
			out = append(out, store.Document{ID: id, Data: data})
		}
	}
	return out, nil
}

func (m *memStore) QueryByMembership(ctx context.Context, collection, field string, values []string) ([]store.Document, error) {
	if len(values) > store.MembershipLimit {
		return nil, store.ErrTooManyValues
	}
	m.membershipCalls = append(m.membershipCalls, values)

	member := map[string]bool{}
	for _, v := range values {
		member[v] = true
	}

	var out []store.Document
	for id, data := range m.docs[collection] {
		if member[m.field(data, field)] {
			out = append(out, store.Document{ID: id, Data: data})
		}
	}
	return out, nil
}

func (m *memStore) ListAll(ctx context.Context, collection string) ([]store.Document, error) {
	if m.failList[collection] {
		return nil, fmt.Errorf("collection scan unavailable")
	}
	var out []store.Document
	for id, data := range m.docs[collection] {
		out = append(out, store.Document{ID: id, Data: data})
	}
	return out, nil
}

func (m *memStore) Add(ctx context.Context, collection, id string, value any) error {
	if m.docs[collection] == nil {
		m.docs[collection] = map[string]json.RawMessage{}
	}
	if _, exists := m.docs[collection][id]; exists {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.docs[collection][id] = data
	return nil
}

func (m *memStore) Update(ctx context.Context, collection, id string, value any) error {
	if _, exists := m.docs[collection][id]; !exists {
		return domain.NotFoundError{Resource: collection + " document"}
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.docs[collection][id] = data
	return nil
}

func (m *memStore) Delete(ctx context.Context, collection, id string) error {
	delete(m.docs[collection], id)
	return nil
}

var _ store.Store = (*memStore)(nil)

// --- collaborator mocks ---

type mockFollowGraph struct {
	followees   map[string][]string
	invalidated []string
}

func (m *mockFollowGraph) GetFollowees(ctx context.Context, userID string) ([]string, error) {
	return m.followees[userID], nil
}

func (m *mockFollowGraph) GetFollowers(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}

func (m *mockFollowGraph) Invalidate(userID string) {
	m.invalidated = append(m.invalidated, userID)
}

type mockProfiles struct {
	profiles map[string]domain.Profile
}

func (m *mockProfiles) Resolve(ctx context.Context, userID string) (domain.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return domain.Profile{}, domain.NotFoundError{Resource: "user"}
	}
	return p, nil
}

func (m *mockProfiles) Invalidate(userID string) {}
