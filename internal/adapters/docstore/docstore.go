// Package docstore is a small schema-less document store. Documents are JSON
// objects grouped into named collections and addressed by a string id.
//
// Three backends share the Client contract: an in-memory map for tests and
// demos, and SQL backends for SQLite and Postgres that keep each document in
// a single JSON column.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"chitfund/internal/adapters/storage"
)

// Domain errors
var (
	ErrNotFound     = storage.ErrNotFound
	ErrInvalidField = errors.New("invalid field name")
	ErrEmptyID      = errors.New("document id cannot be empty")
)

// Fields is the decoded body of a document.
type Fields map[string]any

// Document is a stored document with its id.
type Document struct {
	ID     string
	Fields Fields
}

// Query selects the ordering of a List call. Documents without the OrderBy
// field are left out of the result. An empty OrderBy lists in insertion order.
type Query struct {
	OrderBy string
	Desc    bool
}

// Client is the document store contract used by the storage adapters.
type Client interface {
	// List returns every document of a collection in query order.
	List(ctx context.Context, collection string, q Query) ([]Document, error)
	// Get returns ErrNotFound when the id is absent.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Add stores a new document under a generated id and returns the id.
	Add(ctx context.Context, collection string, fields Fields) (string, error)
	// Set creates or replaces the document with the given id.
	Set(ctx context.Context, collection, id string, fields Fields) error
	// Update merges fields into an existing document. Named fields are
	// overwritten, others are kept. Returns ErrNotFound when absent.
	Update(ctx context.Context, collection, id string, fields Fields) error
	// Delete removes a document. Returns ErrNotFound when absent.
	Delete(ctx context.Context, collection, id string) error
}

// timestampLayout is fixed width so stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateField checks a field name is safe to use in an ordering clause.
func ValidateField(name string) error {
	if !fieldPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidField, name)
	}
	return nil
}

func validateCollection(name string) error {
	if !fieldPattern.MatchString(name) {
		return fmt.Errorf("%w: collection %q", ErrInvalidField, name)
	}
	return nil
}

// merge copies src over dst and returns dst.
func merge(dst, src Fields) Fields {
	if dst == nil {
		dst = Fields{}
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// compareValues orders two decoded JSON values. Values of different kinds
// order by kind: bool < number < string.
func compareValues(a, b any) int {
	ka, kb := kindRank(a), kindRank(b)
	if ka != kb {
		return ka - kb
	}
	switch av := a.(type) {
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		bv := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	}
	return 0
}

func kindRank(v any) int {
	switch v.(type) {
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}

// sortDocuments orders docs by q.OrderBy with the id as tiebreak.
func sortDocuments(docs []Document, q Query) {
	sort.SliceStable(docs, func(i, j int) bool {
		c := compareValues(docs[i].Fields[q.OrderBy], docs[j].Fields[q.OrderBy])
		if c == 0 {
			return docs[i].ID < docs[j].ID
		}
		if q.Desc {
			return c > 0
		}
		return c < 0
	})
}
