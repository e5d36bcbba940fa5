package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/garyjia/voucher-flow/pkg/utils"
)

var validate = validator.New()

// FieldError is a field level validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors holds one message per failing field
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// ByField indexes the messages by field name
func (e ValidationErrors) ByField() map[string]string {
	out := make(map[string]string, len(e))
	for _, fe := range e {
		out[fe.Field] = fe.Message
	}
	return out
}

// Validate evaluates every rule of the schema against values
func (s Schema) Validate(values Values) ValidationErrors {
	var errs ValidationErrors
	for _, r := range s.Rules {
		if msg := r.check(values[r.Field]); msg != "" {
			errs = append(errs, FieldError{Field: r.Field, Message: msg})
		}
	}
	return errs
}

// ValidateFields resolves the active fields for values and validates them
func ValidateFields(fields []Field, values Values) ValidationErrors {
	_, schema := Resolve(fields, values)
	return schema.Validate(values)
}

func (r Rule) check(val any) string {
	switch r.Type {
	case TypeNumber:
		n, present, err := numberOf(val)
		if !present {
			if r.Required {
				return r.requiredMessage()
			}
			return ""
		}
		if err != nil {
			return fmt.Sprintf("%s একটি সংখ্যা হতে হবে", r.name())
		}
		return r.run(n)
	case TypePinSelector:
		pins := pinsOf(val)
		if !r.Required && len(pins) == 0 {
			return ""
		}
		return r.run(pins)
	case TypeQuantityUnit:
		if !r.Required {
			return ""
		}
		qu := quantityUnitOf(val)
		if msg := r.run(strings.TrimSpace(qu.Quantity)); msg != "" {
			return fmt.Sprintf("%s এর পরিমাণ আবশ্যক", r.name())
		}
		if msg := r.run(strings.TrimSpace(qu.Unit)); msg != "" {
			return fmt.Sprintf("%s এর একক নির্বাচন করুন", r.name())
		}
		return ""
	case TypeDate:
		if r.Required && isEmpty(val) {
			return r.requiredMessage()
		}
		return ""
	case TypeFile:
		if r.Required && isEmpty(val) {
			return r.requiredMessage()
		}
		return ""
	}

	if _, ok := val.(string); val != nil && !ok {
		return fmt.Sprintf("%s এর মান সঠিক নয়", r.name())
	}
	return r.run(strings.TrimSpace(textOf(val)))
}

// run evaluates the rule's validator tag and translates the first failure
func (r Rule) run(value any) string {
	if r.Tag == "" {
		return ""
	}
	err := validate.Var(value, r.Tag)
	if err == nil {
		return ""
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Sprintf("%s এর মান সঠিক নয়", r.name())
	}

	switch verrs[0].Tag() {
	case "required", "min":
		return r.requiredMessage()
	case "gte":
		return fmt.Sprintf("%s অবশ্যই ০ এর বেশি হতে হবে", r.name())
	case "lte":
		if r.Max != nil {
			return fmt.Sprintf("%s সর্বোচ্চ %s হতে পারে", r.name(), utils.FormatTaka(*r.Max))
		}
	}
	return fmt.Sprintf("%s এর মান সঠিক নয়", r.name())
}

func (r Rule) requiredMessage() string {
	if r.Type == TypePinSelector {
		return fmt.Sprintf("%s: অন্তত একটি পিন নির্বাচন করুন", r.name())
	}
	return fmt.Sprintf("%s আবশ্যক", r.name())
}

func (r Rule) name() string {
	if r.Label != "" {
		return r.Label
	}
	return r.Field
}
