// Package models contains data types for the Docebo client.
package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is a platform record as returned by list, search and get calls.
// Field names differ between API surfaces (id, course_id, idCourse), so
// callers read values through ordered alias lists instead of a fixed schema.
type Record map[string]any

// String returns the value stored under key rendered as a string.
// Numbers are rendered without exponent, so 277 stays "277".
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// FirstNonEmpty returns the first non-empty value among keys, in order.
func (r Record) FirstNonEmpty(keys ...string) string {
	for _, k := range keys {
		if s := r.String(k); s != "" {
			return s
		}
	}
	return ""
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
