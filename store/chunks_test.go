package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
)

type mockStore struct {
	Store
	queries [][]string
	fail    bool
}

func (m *mockStore) QueryByMembership(ctx context.Context, collection, field string, values []string) ([]Document, error) {
	if m.fail {
		return nil, fmt.Errorf("backend unavailable")
	}
	if len(values) > MembershipLimit {
		return nil, ErrTooManyValues
	}
	m.queries = append(m.queries, values)

	docs := make([]Document, 0, len(values))
	for _, v := range values {
		docs = append(docs, Document{ID: v, Data: json.RawMessage(`{}`)})
	}
	return docs, nil
}

func TestQueryInChunksEmptyInput(t *testing.T) {
	m := &mockStore{}
	docs, err := QueryInChunks(context.Background(), m, CollectionProjects, "userId", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected empty result got %d docs", len(docs))
	}
	if len(m.queries) != 0 {
		t.Fatalf("expected no queries got %d", len(m.queries))
	}
}

func TestQueryInChunksSplitsAndMerges(t *testing.T) {
	cases := []struct {
		n          int
		wantChunks int
	}{
		{1, 1},
		{10, 1},
		{11, 2},
		{25, 3},
	}

	for _, tc := range cases {
		ids := make([]string, tc.n)
		for i := range ids {
			ids[i] = fmt.Sprintf("id-%02d", i)
		}

		m := &mockStore{}
		docs, err := QueryInChunks(context.Background(), m, CollectionProjects, "userId", ids)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", tc.n, err)
		}
		if len(m.queries) != tc.wantChunks {
			t.Fatalf("n=%d: expected %d queries got %d", tc.n, tc.wantChunks, len(m.queries))
		}

		seen := map[string]bool{}
		for _, doc := range docs {
			seen[doc.ID] = true
		}
		for _, id := range ids {
			if !seen[id] {
				t.Fatalf("n=%d: id %s missing from merged result", tc.n, id)
			}
		}
		if len(docs) != tc.n {
			t.Fatalf("n=%d: expected %d merged docs got %d", tc.n, tc.n, len(docs))
		}
	}
}

func TestQueryInChunksPropagatesError(t *testing.T) {
	m := &mockStore{fail: true}
	_, err := QueryInChunks(context.Background(), m, CollectionProjects, "userId", []string{"a"})
	if err == nil {
		t.Fatalf("expected chunk failure to surface")
	}
}
