package form

// Widget describes the input affordance for one field value
type Widget struct {
	Control  string   `json:"control"`
	Value    any      `json:"value"`
	Options  []Option `json:"options,omitempty"`
	Multiple bool     `json:"multiple,omitempty"`
}

// Render picks the input control for a field type. It has no side effects.
func Render(t FieldType, value any, options []Option) Widget {
	w := Widget{Value: value, Options: options}
	switch t {
	case TypeText:
		if len(options) > 0 {
			w.Control = "autosuggest"
		} else {
			w.Control = "text-input"
		}
	case TypeNumber:
		w.Control = "number-input"
	case TypeDropdown:
		w.Control = "select"
	case TypeTextarea:
		w.Control = "textarea"
	case TypeDate:
		w.Control = "date-picker"
		if v, ok := value.(string); ok && v != "" {
			if d, err := ParseDate(v); err == nil {
				w.Value = d
			}
		}
	case TypeTime:
		w.Control = "time-picker"
	case TypeFile:
		w.Control = "file-picker"
	case TypePinSelector:
		w.Control = "pin-selector"
		w.Value = pinsOf(value)
		w.Multiple = true
	case TypeQuantityUnit:
		w.Control = "quantity-unit"
		w.Value = quantityUnitOf(value)
	default:
		w.Control = "text-input"
	}
	return w
}

// RenderField renders f with its current value from values
func RenderField(f Field, values Values) Widget {
	w := Render(f.Type, values[f.Name], f.Options)
	if f.Type == TypePinSelector {
		w.Multiple = f.AllowMultiplePins
	}
	if f.Type == TypeQuantityUnit && len(f.UnitOptions) > 0 {
		for _, u := range f.UnitOptions {
			w.Options = append(w.Options, Option{Value: u, Label: u})
		}
	}
	return w
}
