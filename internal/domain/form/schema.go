package form

import (
	"fmt"
	"strconv"
	"strings"
)

// Rule is the validation rule of one active field. Tag is a
// go-playground/validator tag evaluated against the coerced value.
type Rule struct {
	Field    string    `json:"field"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Tag      string    `json:"tag,omitempty"`
	Max      *float64  `json:"max,omitempty"`
}

// Schema is the rule set for one snapshot of form values. Required-ness and
// numeric ceilings depend on sibling values, so a schema must be rebuilt
// whenever those values change.
type Schema struct {
	Rules []Rule `json:"rules"`
}

// Rule returns the rule for a field name
func (s Schema) Rule(name string) (Rule, bool) {
	for _, r := range s.Rules {
		if r.Field == name {
			return r, true
		}
	}
	return Rule{}, false
}

// BuildSchema walks the active field list and derives one rule per field
func BuildSchema(active []Field, values Values) Schema {
	rules := make([]Rule, 0, len(active))
	for _, f := range active {
		rules = append(rules, ruleFor(f, values))
	}
	return Schema{Rules: rules}
}

// Resolve composes visibility resolution and rule construction
func Resolve(fields []Field, values Values) ([]Field, Schema) {
	active := ActiveFields(fields, values)
	return active, BuildSchema(active, values)
}

func ruleFor(f Field, values Values) Rule {
	r := Rule{
		Field:    f.Name,
		Label:    f.Label,
		Type:     f.Type,
		Required: f.Mandatory,
	}

	switch f.Type {
	case TypeNumber:
		var parts []string
		if f.Mandatory {
			// zero counts as "not entered"
			parts = append(parts, "gte=1")
		}
		if ceiling, ok := ceilingFor(f, values); ok {
			r.Max = &ceiling
			parts = append(parts, "lte="+strconv.FormatFloat(ceiling, 'f', -1, 64))
		}
		r.Tag = strings.Join(parts, ",")
	case TypePinSelector:
		if f.Mandatory {
			r.Tag = "required,min=1,dive,required"
		} else {
			r.Tag = "omitempty,dive,required"
		}
	default:
		if f.Mandatory {
			r.Tag = "required"
		}
	}
	return r
}

// ceilingFor looks up the amount ceiling keyed by the trigger field's
// current value
func ceilingFor(f Field, values Values) (float64, bool) {
	if len(f.MaxAmountRules) == 0 || f.MaxAmountTrigger == "" {
		return 0, false
	}
	trigger := values.Text(f.MaxAmountTrigger)
	if trigger == "" {
		return 0, false
	}
	for key, ceiling := range f.MaxAmountRules {
		if sameValue(key, trigger) {
			return ceiling, true
		}
	}
	return 0, false
}

func (r Rule) String() string {
	return fmt.Sprintf("%s(%s) %s", r.Field, r.Type, r.Tag)
}
