package form

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/garyjia/voucher-flow/pkg/utils"
)

// Values is the field value record of one voucher keyed by field name
type Values map[string]any

// QuantityUnit is the value of a quantity-unit field
type QuantityUnit struct {
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

var errNotNumeric = errors.New("value is not numeric")

// Clone returns a shallow copy of v
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Text returns the string form of a scalar value, or "" when absent
func (v Values) Text(name string) string {
	return textOf(v[name])
}

// Number returns the coerced numeric value of name
func (v Values) Number(name string) (float64, bool) {
	n, present, err := numberOf(v[name])
	return n, present && err == nil
}

func textOf(val any) string {
	switch t := val.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format("2006-01-02")
	case fmt.Stringer:
		return t.String()
	case float64, float32, int, int64, int32:
		return fmt.Sprint(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	}
	return ""
}

// isEmpty reports whether a value counts as "not entered"
func isEmpty(val any) bool {
	switch t := val.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case QuantityUnit:
		return t.Quantity == "" && t.Unit == ""
	case time.Time:
		return t.IsZero()
	case *time.Time:
		return t == nil || t.IsZero()
	}
	return false
}

// numberOf coerces val to a finite number. present is false when nothing was
// entered.
func numberOf(val any) (n float64, present bool, err error) {
	n, present, err = rawNumberOf(val)
	if err == nil && (math.IsInf(n, 0) || math.IsNaN(n)) {
		return 0, true, errNotNumeric
	}
	return n, present, err
}

func rawNumberOf(val any) (n float64, present bool, err error) {
	switch t := val.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return t, true, nil
	case float32:
		return float64(t), true, nil
	case int:
		return float64(t), true, nil
	case int64:
		return float64(t), true, nil
	case int32:
		return float64(t), true, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, false, nil
		}
		n, err := utils.ParseAmount(t)
		if err != nil {
			return 0, true, errNotNumeric
		}
		return n, true, nil
	}
	return 0, true, errNotNumeric
}

func pinsOf(val any) []string {
	switch t := val.(type) {
	case []string:
		return t
	case []any:
		pins := make([]string, 0, len(t))
		for _, p := range t {
			pins = append(pins, textOf(p))
		}
		return pins
	case string:
		if t == "" {
			return []string{}
		}
		return []string{t}
	}
	return []string{}
}

func quantityUnitOf(val any) QuantityUnit {
	switch t := val.(type) {
	case QuantityUnit:
		return t
	case *QuantityUnit:
		if t != nil {
			return *t
		}
	case map[string]any:
		return QuantityUnit{Quantity: textOf(t["quantity"]), Unit: textOf(t["unit"])}
	case map[string]string:
		return QuantityUnit{Quantity: t["quantity"], Unit: t["unit"]}
	}
	return QuantityUnit{}
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate parses the serialized forms a stored date value may take
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// Merge returns a copy of v overlaid with other
func (v Values) Merge(other Values) Values {
	out := v.Clone()
	for k, val := range other {
		out[k] = val
	}
	return out
}
