package store

import "encoding/json"

// toMap converts a typed entity to its JSON-object form so it can live
// alongside the other entries of a cached array. Entities serialize
// with dates as RFC 3339 strings and amounts as decimal strings, which
// keeps every cache entry pure JSON.
func toMap(item any) (map[string]any, bool) {
	if m, ok := item.(map[string]any); ok {
		return m, true
	}
	data, err := json.Marshal(item)
	if err != nil {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false
	}
	return m, true
}
