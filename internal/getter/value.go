package getter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// State tells a resolved value apart from a legitimately empty one and from a
// failed evaluation.
type State int

const (
	// StateUnknown means the evaluation failed. It is the zero value so an
	// uninitialized Value never reads as data.
	StateUnknown State = iota
	// StateNull means the provider answered and the facet is absent.
	StateNull
	// StatePresent means the value holds data.
	StatePresent
)

func (s State) String() string {
	switch s {
	case StateNull:
		return "null"
	case StatePresent:
		return "present"
	default:
		return "unknown"
	}
}

// Value is the result of evaluating one property.
type Value struct {
	state State
	v     any
}

// Unknown returns the failed-evaluation value.
func Unknown() Value { return Value{} }

// Null returns the empty value.
func Null() Value { return Value{state: StateNull} }

// Time returns a date value.
func Time(t time.Time) Value { return Value{state: StatePresent, v: t} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{state: StatePresent, v: n} }

// Count returns a numeric value from an integer count.
func Count(n int) Value { return Number(float64(n)) }

// Text returns a string value.
func Text(s string) Value { return Value{state: StatePresent, v: s} }

// Strings returns a list value. A nil list is stored as an empty list.
func Strings(list []string) Value {
	if list == nil {
		list = []string{}
	}
	return Value{state: StatePresent, v: list}
}

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{state: StatePresent, v: b} }

// State returns the value's state.
func (v Value) State() State { return v.state }

// IsUnknown reports whether the evaluation failed.
func (v Value) IsUnknown() bool { return v.state == StateUnknown }

// IsNull reports whether the facet was legitimately absent.
func (v Value) IsNull() bool { return v.state == StateNull }

// Any returns the raw payload, nil unless present.
func (v Value) Any() any { return v.v }

// Time returns the date payload.
func (v Value) Time() (time.Time, bool) {
	t, ok := v.v.(time.Time)
	return t, ok
}

// Number returns the numeric payload.
func (v Value) Number() (float64, bool) {
	n, ok := v.v.(float64)
	return n, ok
}

// Text returns the string payload.
func (v Value) Text() (string, bool) {
	s, ok := v.v.(string)
	return s, ok
}

// Strings returns the list payload.
func (v Value) Strings() ([]string, bool) {
	s, ok := v.v.([]string)
	return s, ok
}

// Bool returns the boolean payload.
func (v Value) Bool() (bool, bool) {
	b, ok := v.v.(bool)
	return b, ok
}

func (v Value) String() string {
	if v.state != StatePresent {
		return v.state.String()
	}
	switch x := v.v.(type) {
	case time.Time:
		return x.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []string:
		return "[" + strings.Join(x, ", ") + "]"
	default:
		return fmt.Sprint(x)
	}
}

// MarshalJSON encodes the state alongside the payload so consumers cannot
// mistake a failed evaluation for an empty one.
func (v Value) MarshalJSON() ([]byte, error) {
	out := struct {
		State string `json:"state"`
		Value any    `json:"value"`
	}{State: v.state.String(), Value: v.v}
	return json.Marshal(out)
}
