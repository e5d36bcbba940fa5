package form

import "github.com/garyjia/voucher-flow/pkg/utils"

// ActiveFields resolves the currently visible fields into a flat ordered
// list. A field is active when it has no dependency, when its dependency
// field holds the required value, or when the dependency is the wildcard and
// the named field is non-empty. The conditional branch matching a parent's
// current value is expanded right after the parent; branches are mutually
// exclusive.
func ActiveFields(fields []Field, values Values) []Field {
	active := make([]Field, 0, len(fields))
	collectActive(fields, values, &active)
	return active
}

func collectActive(fields []Field, values Values, out *[]Field) {
	for _, f := range fields {
		if !isVisible(f, values) {
			continue
		}
		*out = append(*out, f)

		current := values.Text(f.Name)
		if current == "" {
			continue
		}
		for _, b := range f.ConditionalFields {
			if sameValue(b.Value, current) {
				collectActive(b.Fields, values, out)
				break
			}
		}
	}
}

func isVisible(f Field, values Values) bool {
	if f.Dependency == nil {
		return true
	}
	val := values[f.Dependency.Field]
	if f.Dependency.Value == Wildcard {
		return !isEmpty(val)
	}
	return sameValue(f.Dependency.Value, textOf(val))
}

// IsActive reports whether the named field is in the active set
func IsActive(fields []Field, values Values, name string) bool {
	for _, f := range ActiveFields(fields, values) {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Prune drops the values of fields that are not active. Inactive branch
// values survive while a form is being edited so that switching back restores
// them; they are removed from the record that is finally submitted.
func Prune(fields []Field, values Values) Values {
	known := make(map[string]bool)
	Walk(fields, func(f Field) { known[f.Name] = true })

	active := make(map[string]bool)
	for _, f := range ActiveFields(fields, values) {
		active[f.Name] = true
	}

	out := make(Values, len(values))
	for k, v := range values {
		if known[k] && !active[k] {
			continue
		}
		out[k] = v
	}
	return out
}

func sameValue(a, b string) bool {
	return utils.NormalizeText(a) == utils.NormalizeText(b)
}
