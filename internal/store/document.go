package store

import (
	"sort"
	"strings"
)

// Document is a schemaless record. Nested objects are map[string]any.
type Document map[string]any

// ID returns the document identifier, or "" when absent.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// String returns the string at path, or "".
func (d Document) String(path string) string {
	v, _ := GetPath(d, path).(string)
	return v
}

// Bool returns the bool at path, or false.
func (d Document) Bool(path string) bool {
	v, _ := GetPath(d, path).(bool)
	return v
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(cloneMap(d))
}

// GetPath resolves a dotted path such as "owner.username".
func GetPath(doc map[string]any, path string) any {
	var current any = map[string]any(doc)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil
		}
		current, ok = m[part]
		if !ok {
			return nil
		}
	}
	return current
}

// SetPath assigns value at a dotted path, creating intermediate objects.
func SetPath(doc map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := asMap(current[part])
		if !ok {
			next = map[string]any{}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// Flatten turns nested objects into dotted keys. Times and slices are leaves.
func Flatten(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	flattenInto(out, "", doc)
	return out
}

func flattenInto(out map[string]any, prefix string, m map[string]any) {
	for key, value := range m {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if nested, ok := asMap(value); ok && len(nested) > 0 {
			flattenInto(out, path, nested)
			continue
		}
		out[path] = value
	}
}

// Project keeps only the given dotted paths of doc.
func Project(doc Document, fields []string) Document {
	out := Document{}
	for _, field := range fields {
		if v := GetPath(doc, field); v != nil {
			SetPath(out, field, v)
			continue
		}
		if _, present := doc[field]; present {
			out[field] = nil
		}
	}
	return out
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case Document:
		return map[string]any(m), m != nil
	}
	return nil, false
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		return cloneMap(value)
	case Document:
		return cloneMap(value)
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), value...)
	default:
		return value
	}
}
