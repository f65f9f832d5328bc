package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var errOffline = errors.New("remote unreachable")

// fakeRemote is an in-memory Remote with an offline switch. Everything
// runs synchronously so tests see deterministic callback sequences.
type fakeRemote struct {
	mu          sync.Mutex
	offline     bool
	nextID      int
	createCalls int
	deleteCalls int
	collections map[string]map[string]Doc
	subs        []*fakeSub
}

type fakeSub struct {
	collection string
	q          Query
	onSnapshot func([]Doc)
	active     bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{collections: make(map[string]map[string]Doc)}
}

func (f *fakeRemote) setOffline(offline bool) {
	f.mu.Lock()
	f.offline = offline
	f.mu.Unlock()
}

func (f *fakeRemote) coll(name string) map[string]Doc {
	if f.collections[name] == nil {
		f.collections[name] = make(map[string]Doc)
	}
	return f.collections[name]
}

func (f *fakeRemote) CreateDocument(_ context.Context, collection string, data Doc) (string, error) {
	f.mu.Lock()
	f.createCalls++
	if f.offline {
		f.mu.Unlock()
		return "", errOffline
	}
	f.nextID++
	id := fmt.Sprintf("remote_%d", f.nextID)
	doc := Doc{"id": id}
	for k, v := range data {
		doc[k] = v
	}
	f.coll(collection)[id] = doc
	f.mu.Unlock()

	f.deliverAll(collection)
	return id, nil
}

func (f *fakeRemote) GetDocument(_ context.Context, collection, id string) (Doc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}
	doc, ok := f.coll(collection)[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDoc(doc), nil
}

func (f *fakeRemote) QueryDocuments(_ context.Context, collection string, q Query) ([]Doc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}
	return f.queryLocked(collection, q), nil
}

func (f *fakeRemote) SubscribeQuery(_ context.Context, collection string, q Query, onSnapshot func([]Doc), _ func(error)) (func(), error) {
	f.mu.Lock()
	if f.offline {
		f.mu.Unlock()
		return nil, errOffline
	}
	sub := &fakeSub{collection: collection, q: q, onSnapshot: onSnapshot, active: true}
	f.subs = append(f.subs, sub)
	initial := f.queryLocked(collection, q)
	f.mu.Unlock()

	onSnapshot(initial)
	return func() {
		f.mu.Lock()
		sub.active = false
		f.mu.Unlock()
	}, nil
}

func (f *fakeRemote) UpdateDocument(_ context.Context, collection, id string, patch Doc) error {
	f.mu.Lock()
	if f.offline {
		f.mu.Unlock()
		return errOffline
	}
	doc, ok := f.coll(collection)[id]
	if !ok {
		doc = Doc{"id": id}
		f.coll(collection)[id] = doc
	}
	for k, v := range patch {
		doc[k] = v
	}
	f.mu.Unlock()

	f.deliverAll(collection)
	return nil
}

func (f *fakeRemote) DeleteDocument(_ context.Context, collection, id string) error {
	f.mu.Lock()
	f.deleteCalls++
	if f.offline {
		f.mu.Unlock()
		return errOffline
	}
	delete(f.coll(collection), id)
	f.mu.Unlock()

	f.deliverAll(collection)
	return nil
}

func (f *fakeRemote) AtomicIncrement(_ context.Context, collection, id, field string, delta float64) error {
	f.mu.Lock()
	if f.offline {
		f.mu.Unlock()
		return errOffline
	}
	doc, ok := f.coll(collection)[id]
	if !ok {
		f.mu.Unlock()
		return ErrNotFound
	}
	current, _ := doc[field].(float64)
	doc[field] = current + delta
	f.mu.Unlock()

	f.deliverAll(collection)
	return nil
}

func (f *fakeRemote) deliverAll(collection string) {
	f.mu.Lock()
	type delivery struct {
		fn   func([]Doc)
		docs []Doc
	}
	var deliveries []delivery
	for _, sub := range f.subs {
		if sub.active && sub.collection == collection {
			deliveries = append(deliveries, delivery{sub.onSnapshot, f.queryLocked(collection, sub.q)})
		}
	}
	f.mu.Unlock()

	for _, d := range deliveries {
		d.fn(d.docs)
	}
}

func (f *fakeRemote) queryLocked(collection string, q Query) []Doc {
	var out []Doc
	for _, doc := range f.coll(collection) {
		if matchesFilters(doc, q.Filters) {
			out = append(out, copyDoc(doc))
		}
	}
	if q.OrderBy != "" {
		sort.Slice(out, func(i, j int) bool {
			less := lessValue(out[i][q.OrderBy], out[j][q.OrderBy])
			if q.Descending {
				return !less
			}
			return less
		})
	}
	if q.Limit > 0 && int64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func matchesFilters(doc Doc, filters []Filter) bool {
	for _, f := range filters {
		field := f.Field
		if field == "_id" {
			field = "id"
		}
		v := doc[field]
		switch f.Op {
		case OpEqual:
			if v != f.Value {
				return false
			}
		case OpGreaterOrEqual:
			if lessValue(v, f.Value) {
				return false
			}
		case OpLessOrEqual:
			if lessValue(f.Value, v) {
				return false
			}
		}
	}
	return true
}

func lessValue(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Before(bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
	case int:
		if bv, ok := b.(int); ok {
			return av < bv
		}
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	}
	return false
}

func copyDoc(doc Doc) Doc {
	out := make(Doc, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
