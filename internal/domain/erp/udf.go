package erp

import "sort"

// Field is a single remote-system user-defined field (UDF): an extensible
// name/value pair that is not part of the fixed record schema. Fields are
// carried as an ordered list on customer and sales order records.
type Field struct {
	// Name is the remote field name, e.g. "UDF_ORDER_SOURCE"
	Name string
	// Value is the field value
	Value string
}

// NormalizeFields coerces the shapes the remote service returns for a field
// container into a flat list. Annoyingly, rather than returning a one-element
// list the service returns just the single field object, so both shapes must
// decode identically.
func NormalizeFields(v any) []Field {
	switch fields := v.(type) {
	case nil:
		return nil
	case []Field:
		return fields
	case Field:
		return []Field{fields}
	case *Field:
		if fields == nil {
			return nil
		}
		return []Field{*fields}
	default:
		return nil
	}
}

// UnpackFields folds a field container into a flat map keyed by field name.
// Duplicate names should not occur, but if they do the last value wins.
func UnpackFields(v any) map[string]string {
	fields := NormalizeFields(v)

	result := make(map[string]string, len(fields))
	for _, field := range fields {
		result[field.Name] = field.Value
	}
	return result
}

// PackFields merges data into the remote field format. An existing entry with
// a matching name is updated in place, otherwise a new entry is appended.
// Entries present in existing but absent from data are kept untouched.
// Keys are applied in sorted order so the output is deterministic.
func PackFields(data map[string]string, existing []Field) []Field {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		found := false
		for i := range existing {
			if existing[i].Name == key {
				existing[i].Value = data[key]
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, Field{Name: key, Value: data[key]})
		}
	}
	return existing
}
