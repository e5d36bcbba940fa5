package form

import "time"

// Defaults produces a value for every field of the full tree, including
// conditional fields that are not currently visible. Values in prior (edit
// mode) override the defaults key by key and are coerced to the field's
// value shape; keys unknown to the tree are carried over untouched.
func Defaults(fields []Field, prior Values) Values {
	out := make(Values)
	types := make(map[string]FieldType)

	Walk(fields, func(f Field) {
		types[f.Name] = f.Type
		if def, ok := defaultFor(f.Type); ok {
			out[f.Name] = def
		}
	})

	for name, val := range prior {
		t, known := types[name]
		if !known {
			out[name] = val
			continue
		}
		out[name] = coerce(t, val)
	}
	return out
}

// defaultFor returns the empty value of a field type. ok is false for types
// whose default is "absent" (the key is left out of the record).
func defaultFor(t FieldType) (any, bool) {
	switch t {
	case TypeDate, TypeNumber, TypeFile:
		return nil, false
	case TypePinSelector:
		return []string{}, true
	case TypeQuantityUnit:
		return QuantityUnit{}, true
	}
	return "", true
}

// coerce converts a stored or transported value into the in-memory shape of
// its field type. Values already in that shape are returned unchanged.
func coerce(t FieldType, val any) any {
	if val == nil {
		return nil
	}
	switch t {
	case TypeDate:
		switch d := val.(type) {
		case time.Time:
			return d
		case *time.Time:
			if d == nil {
				return nil
			}
			return *d
		case string:
			if d == "" {
				return nil
			}
			if parsed, err := ParseDate(d); err == nil {
				return parsed
			}
		}
		return val
	case TypePinSelector:
		return pinsOf(val)
	case TypeQuantityUnit:
		return quantityUnitOf(val)
	}
	return val
}
