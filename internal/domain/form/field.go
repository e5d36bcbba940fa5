// Package form implements the schema driven voucher form engine: default
// values, visibility resolution, per-field rule construction and validation.
// Every function here is pure; callers own the value records.
package form

// FieldType is the input type of a form field
type FieldType string

const (
	TypeText         FieldType = "text"
	TypeNumber       FieldType = "number"
	TypeDropdown     FieldType = "dropdown"
	TypeTextarea     FieldType = "textarea"
	TypeDate         FieldType = "date"
	TypeTime         FieldType = "time"
	TypeFile         FieldType = "file"
	TypePinSelector  FieldType = "pin-selector"
	TypeQuantityUnit FieldType = "quantity-unit"
)

// IsValid reports whether t is one of the supported field types
func (t FieldType) IsValid() bool {
	switch t {
	case TypeText, TypeNumber, TypeDropdown, TypeTextarea, TypeDate,
		TypeTime, TypeFile, TypePinSelector, TypeQuantityUnit:
		return true
	}
	return false
}

// Wildcard dependency value: visible whenever the named field is non-empty
const Wildcard = "*"

// Option is one selectable value of a dropdown or suggestion list
type Option struct {
	Value string `mapstructure:"value" json:"value"`
	Label string `mapstructure:"label" json:"label"`
}

// Dependency makes a field visible only while a sibling holds Value
type Dependency struct {
	Field string `mapstructure:"field" json:"field"`
	Value string `mapstructure:"value" json:"value"`
}

// Branch lists the fields activated while the parent field equals Value
type Branch struct {
	Value  string  `mapstructure:"value" json:"value"`
	Fields []Field `mapstructure:"fields" json:"fields"`
}

// Field describes one input of a voucher form
type Field struct {
	Name              string             `mapstructure:"name" json:"name"`
	Label             string             `mapstructure:"label" json:"label"`
	Type              FieldType          `mapstructure:"type" json:"type"`
	Mandatory         bool               `mapstructure:"mandatory" json:"mandatory"`
	Placeholder       string             `mapstructure:"placeholder" json:"placeholder,omitempty"`
	Options           []Option           `mapstructure:"options" json:"options,omitempty"`
	Dependency        *Dependency        `mapstructure:"dependency" json:"dependency,omitempty"`
	ConditionalFields []Branch           `mapstructure:"conditional_fields" json:"conditional_fields,omitempty"`
	UnitOptions       []string           `mapstructure:"unit_options" json:"unit_options,omitempty"`
	MaxAmountRules    map[string]float64 `mapstructure:"max_amount_rules" json:"max_amount_rules,omitempty"`
	MaxAmountTrigger  string             `mapstructure:"max_amount_trigger" json:"max_amount_trigger,omitempty"`
	AllowMultiplePins bool               `mapstructure:"allow_multiple_pins" json:"allow_multiple_pins,omitempty"`
}

// Walk visits every field of the tree depth first, including the fields of
// every conditional branch regardless of visibility.
func Walk(fields []Field, visit func(Field)) {
	for _, f := range fields {
		visit(f)
		for _, b := range f.ConditionalFields {
			Walk(b.Fields, visit)
		}
	}
}
