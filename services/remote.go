package services

import (
	"context"
	"errors"
)

// Doc is a remote document as the services see it: plain JSON-ish
// values plus time.Time for timestamp fields. The remote implementation
// normalizes its own wire types (BSON datetimes, object ids) before
// documents cross this boundary, so nothing downstream ever inspects
// representations.
type Doc = map[string]any

// Filter operators
const (
	OpEqual          = "=="
	OpGreaterOrEqual = ">="
	OpLessOrEqual    = "<="
)

type Filter struct {
	Field string
	Op    string
	Value any
}

// Query describes a scoped read against a collection.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int64
}

// ErrNotFound is returned by GetDocument when no document has the id.
var ErrNotFound = errors.New("document not found")

// Remote is the authoritative document store. The sync services treat
// it as a black box: create/update/delete plus live queries that push a
// full fresh result set on every relevant change.
type Remote interface {
	CreateDocument(ctx context.Context, collection string, data Doc) (string, error)
	GetDocument(ctx context.Context, collection, id string) (Doc, error)
	QueryDocuments(ctx context.Context, collection string, q Query) ([]Doc, error)

	// SubscribeQuery delivers the current result set immediately, then a
	// fresh one after every relevant change, until the returned cancel
	// function is called. Errors (offline, permission) go to onError;
	// the subscription stays registered and resumes when possible.
	SubscribeQuery(ctx context.Context, collection string, q Query, onSnapshot func([]Doc), onError func(error)) (func(), error)

	// UpdateDocument merges patch into the document (upserting for
	// single-document settings like the user profile).
	UpdateDocument(ctx context.Context, collection, id string, patch Doc) error
	DeleteDocument(ctx context.Context, collection, id string) error

	// AtomicIncrement adds delta to a numeric field server-side, so
	// concurrent writers from other devices cannot lose updates.
	AtomicIncrement(ctx context.Context, collection, id, field string, delta float64) error
}
