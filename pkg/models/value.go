package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type valueKind uint8

const (
	valueUnset valueKind = iota
	valueNumber
	valueText
)

// Value is the value of a parameter or property. The platform accepts either
// a number or a string. Numbers keep their JSON literal so large integers are
// sent exactly as they were given.
type Value struct {
	kind valueKind
	num  string
	text string
}

// NumberValue returns a numeric Value. NaN and infinities produce a Value that
// fails validation.
func NumberValue(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{kind: valueNumber, num: strconv.FormatFloat(f, 'g', -1, 64)}
	}
	b, _ := json.Marshal(f)
	return Value{kind: valueNumber, num: string(b)}
}

// IntValue returns an integer Value.
func IntValue(i int64) Value {
	return Value{kind: valueNumber, num: strconv.FormatInt(i, 10)}
}

// UintValue returns an unsigned integer Value.
func UintValue(u uint64) Value {
	return Value{kind: valueNumber, num: strconv.FormatUint(u, 10)}
}

// TextValue returns a string Value.
func TextValue(s string) Value {
	return Value{kind: valueText, text: s}
}

// ValueOf converts a loosely typed number or string into a Value. Any Go
// integer kind, finite float and json.Number holding a valid JSON number are
// numbers. Other types, including bool, NaN and infinities, are rejected.
func ValueOf(raw any) (Value, bool) {
	switch v := raw.(type) {
	case string:
		return TextValue(v), true
	case json.Number:
		if !isNumberLiteral(string(v)) {
			return Value{}, false
		}
		return Value{kind: valueNumber, num: string(v)}, true
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return IntValue(int64(v)), true
	case int8:
		return IntValue(int64(v)), true
	case int16:
		return IntValue(int64(v)), true
	case int32:
		return IntValue(int64(v)), true
	case int64:
		return IntValue(v), true
	case uint:
		return UintValue(uint64(v)), true
	case uint8:
		return UintValue(uint64(v)), true
	case uint16:
		return UintValue(uint64(v)), true
	case uint32:
		return UintValue(uint64(v)), true
	case uint64:
		return UintValue(v), true
	}
	return Value{}, false
}

func finite(f float64) (Value, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, false
	}
	return NumberValue(f), true
}

// isNumberLiteral reports whether s is a JSON number with no surrounding
// whitespace.
func isNumberLiteral(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	if c := s[0]; c != '-' && (c < '0' || c > '9') {
		return false
	}
	return json.Valid([]byte(s))
}

// IsNumber reports whether v holds a number.
func (v Value) IsNumber() bool { return v.kind == valueNumber }

// IsText reports whether v holds a string.
func (v Value) IsText() bool { return v.kind == valueText }

// IsSet reports whether v holds either kind of value.
func (v Value) IsSet() bool { return v.kind != valueUnset }

// Number returns the JSON literal of a numeric value.
func (v Value) Number() (json.Number, bool) {
	return json.Number(v.num), v.kind == valueNumber
}

// Float returns the numeric value as a float64, which may round large
// integers, and whether v is a number.
func (v Value) Float() (float64, bool) {
	if v.kind != valueNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.num, 64)
	return f, err == nil
}

// Int64 returns the value as an int64 when it is an integral number in range.
func (v Value) Int64() (int64, bool) {
	if v.kind != valueNumber {
		return 0, false
	}
	i, err := strconv.ParseInt(v.num, 10, 64)
	return i, err == nil
}

// Text returns the string value and whether v is a string.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == valueText
}

// Interface returns the held value as json.Number, string or nil.
func (v Value) Interface() any {
	switch v.kind {
	case valueNumber:
		return json.Number(v.num)
	case valueText:
		return v.text
	}
	return nil
}

// Equal compares two values. Numbers are compared exactly by value, so 1e3
// equals 1000 and 9007199254740993 does not equal 9007199254740992.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case valueText:
		return v.text == o.text
	case valueNumber:
		if v.num == o.num {
			return true
		}
		a, okA := new(big.Rat).SetString(v.num)
		b, okB := new(big.Rat).SetString(o.num)
		return okA && okB && a.Cmp(b) == 0
	}
	return true
}

func (v Value) String() string {
	switch v.kind {
	case valueNumber:
		return v.num
	case valueText:
		return v.text
	}
	return "<unset>"
}

// Validate implements validation.Validatable.
func (v Value) Validate() error {
	switch {
	case v.kind == valueUnset:
		return validation.NewError("validation_value_unset", "must be a number or a string")
	case v.kind == valueNumber && !isNumberLiteral(v.num):
		return validation.NewError("validation_value_not_finite", "must be a finite number")
	}
	return nil
}

// MarshalJSON encodes the value as a JSON number or string. Numbers are
// written exactly as held.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case valueNumber:
		if !isNumberLiteral(v.num) {
			return nil, fmt.Errorf("value %q is not a finite number", v.num)
		}
		return []byte(v.num), nil
	case valueText:
		return json.Marshal(v.text)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a JSON number, string or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = Value{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextValue(s)
		return nil
	}

	if !isNumberLiteral(string(data)) {
		return fmt.Errorf("value must be a number or a string, got %s", data)
	}
	*v = Value{kind: valueNumber, num: string(data)}
	return nil
}
