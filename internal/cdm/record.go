package cdm

import (
	"sort"
	"strconv"
	"strings"
)

// Record is one fetched metadata document for a library item. Its
// schema varies by installation: values may live in fixed top-level
// keys, in a dynamic "fields" list of label/value pairs, or both.
type Record map[string]any

// Str returns the trimmed string form of a scalar value under key.
// Numeric values (JSON numbers decode as float64) are formatted
// without a fractional part when whole. Missing or non-scalar values
// yield "".
func (r Record) Str(key string) string {
	return scalarString(r[key])
}

// Keys returns the record's top-level keys, sorted, for diagnostics.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FieldIndex builds a case-insensitive label→value map from the
// record's dynamic "fields" list. Entries carry either a "label" or a
// "key" naming the field. The first non-empty value per label wins.
//
// Build the index once per record and route all dynamic lookups
// through it rather than rescanning the list per field.
func (r Record) FieldIndex() map[string]string {
	idx := make(map[string]string)
	list, ok := r["fields"].([]any)
	if !ok {
		return idx
	}
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		field := Record(m)
		label := field.Str("label")
		if label == "" {
			label = field.Str("key")
		}
		if label == "" {
			continue
		}
		label = strings.ToLower(label)
		if value := field.Str("value"); value != "" && idx[label] == "" {
			idx[label] = value
		}
	}
	return idx
}

// FileEntries returns the legacy "files" descriptor list, if present.
func (r Record) FileEntries() []Record {
	list, ok := r["files"].([]any)
	if !ok {
		return nil
	}
	var files []Record
	for _, entry := range list {
		if m, ok := entry.(map[string]any); ok {
			files = append(files, Record(m))
		}
	}
	return files
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// firstNonEmpty returns the first value with non-whitespace content.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
