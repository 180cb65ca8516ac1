package toolcache

import (
	"encoding/json"
	"sort"
	"strings"
)

// Key builds the cache key for a tool call: the tool name, a colon, and a
// canonical JSON rendering of the arguments. Structurally equal argument
// maps always produce the same key regardless of map iteration order.
//
// The serialized arguments stay in the key verbatim rather than being
// hashed so that InvalidatePath can match entries by substring.
func Key(tool string, args map[string]any) string {
	return tool + ":" + string(canonicalize(args))
}

// argsOf returns the serialized-arguments component of a key.
func argsOf(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[i+1:]
	}
	return ""
}

// canonicalize renders v as JSON with object keys sorted. Values that
// cannot marshal render as null; a key must never fail to build.
func canonicalize(v any) []byte {
	switch val := v.(type) {
	case nil:
		return []byte("null")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := []byte{'{'}
		for i, k := range keys {
			if i > 0 {
				out = append(out, ',')
			}
			kb, _ := json.Marshal(k)
			out = append(out, kb...)
			out = append(out, ':')
			out = append(out, canonicalize(val[k])...)
		}
		return append(out, '}')
	case []any:
		out := []byte{'['}
		for i, item := range val {
			if i > 0 {
				out = append(out, ',')
			}
			out = append(out, canonicalize(item)...)
		}
		return append(out, ']')
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return []byte("null")
		}
		return b
	}
}
