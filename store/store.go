// Package store defines the document store contract the application is
// written against. The backend is a schemaless collection/document database
// supporting equality and membership filters; result sets are unordered.
package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// MembershipLimit is the maximum number of values the backend accepts in a
// single membership filter. Longer id lists must go through QueryInChunks.
const MembershipLimit = 10

// Collection names used across the platform.
const (
	CollectionUsers    = "users"
	CollectionProjects = "projects"
	CollectionComments = "comments"
	CollectionFollows  = "follows"
)

// Document is one stored document. Data is the raw document body; the id is
// carried both in the row key and inside the body for round-tripping.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Store is the document store collaborator.
type Store interface {
	GetByID(ctx context.Context, collection, id string) (Document, error)
	QueryByEquality(ctx context.Context, collection, field, value string) ([]Document, error)
	// QueryByMembership matches documents whose field value is one of the
	// given values. At most MembershipLimit values are accepted per call.
	QueryByMembership(ctx context.Context, collection, field string, values []string) ([]Document, error)
	ListAll(ctx context.Context, collection string) ([]Document, error)
	Add(ctx context.Context, collection, id string, value any) error
	Update(ctx context.Context, collection, id string, value any) error
	Delete(ctx context.Context, collection, id string) error
}

// ErrTooManyValues is returned when a membership query exceeds MembershipLimit.
var ErrTooManyValues = fmt.Errorf("membership filter accepts at most %d values", MembershipLimit)

// Decode unmarshals a document body into a typed value.
func Decode[T any](doc Document) (T, error) {
	var out T
	err := json.Unmarshal(doc.Data, &out)
	return out, err
}

// DecodeAll unmarshals a result set, skipping documents that fail to decode.
func DecodeAll[T any](docs []Document) []T {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := Decode[T](doc)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
