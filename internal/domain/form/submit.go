package form

import (
	"fmt"
	"strings"
)

// SubmitError is returned by Engine.Submit when validation fails. Errors
// carries one message per failing field and Message the aggregate notice.
type SubmitError struct {
	Errors  ValidationErrors
	Message string
}

func (e *SubmitError) Error() string {
	return e.Message
}

// Handler receives the pruned values of a valid submission
type Handler func(values Values) error

// Engine binds the form engine functions to one field descriptor tree
type Engine struct {
	fields []Field
}

// NewEngine creates an engine for fields
func NewEngine(fields []Field) *Engine {
	return &Engine{fields: fields}
}

// Fields returns the descriptor tree
func (e *Engine) Fields() []Field {
	return e.fields
}

// Defaults returns the default values, overridden by prior when given
func (e *Engine) Defaults(prior Values) Values {
	return Defaults(e.fields, prior)
}

// Active returns the active fields for values
func (e *Engine) Active(values Values) []Field {
	return ActiveFields(e.fields, values)
}

// Schema builds the rules for the current values
func (e *Engine) Schema(values Values) Schema {
	_, schema := Resolve(e.fields, values)
	return schema
}

// Validate checks values against the schema derived from them
func (e *Engine) Validate(values Values) ValidationErrors {
	return e.Schema(values).Validate(values)
}

// Submit validates values and hands the pruned record to handler. On success
// it returns fresh defaults so the caller can reset the form.
func (e *Engine) Submit(values Values, handler Handler) (Values, error) {
	if errs := e.Validate(values); len(errs) > 0 {
		return values, &SubmitError{Errors: errs, Message: aggregateMessage(errs)}
	}

	if handler != nil {
		if err := handler(Prune(e.fields, values)); err != nil {
			return values, err
		}
	}
	return e.Defaults(nil), nil
}

func aggregateMessage(errs ValidationErrors) string {
	labels := make([]string, 0, len(errs))
	for _, fe := range errs {
		labels = append(labels, fe.Field)
	}
	return fmt.Sprintf("ফর্মে %d টি ত্রুটি রয়েছে: %s", len(errs), strings.Join(labels, ", "))
}
