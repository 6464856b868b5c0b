package cache

import (
	"encoding/json"
	"fmt"
)

// KeyPrefix namespaces cache entries in the shared durable store.
const KeyPrefix = "cache:"

// Key builds the cache key for an operation and its variables. Map keys are
// encoded in sorted order at every level, so logically identical variables
// produce identical keys regardless of insertion order.
func Key(op string, vars map[string]any) string {
	if vars == nil {
		vars = map[string]any{}
	}
	data, err := json.Marshal(vars)
	if err != nil {
		// Variables are built from strings, numbers and nested maps; anything
		// else is a programming error in the caller.
		panic(fmt.Sprintf("cache: unencodable variables for %s: %v", op, err))
	}
	return KeyPrefix + op + ":" + string(data)
}
