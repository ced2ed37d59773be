package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Value is a stored answer: a string for text, dropdown and file fields, a
// bool for checkboxes.
type Value struct {
	s      string
	b      bool
	isBool bool
}

// String returns a string value
func String(s string) Value {
	return Value{s: s}
}

// Bool returns a boolean value
func Bool(b bool) Value {
	return Value{b: b, isBool: true}
}

// IsBool reports whether v holds a boolean
func (v Value) IsBool() bool {
	return v.isBool
}

// AsString returns the string and true, or "" and false for booleans
func (v Value) AsString() (string, bool) {
	if v.isBool {
		return "", false
	}
	return v.s, true
}

// AsBool returns the boolean and true, or false and false for strings
func (v Value) AsBool() (bool, bool) {
	if !v.isBool {
		return false, false
	}
	return v.b, true
}

func (v Value) String() string {
	if v.isBool {
		return strconv.FormatBool(v.b)
	}
	return v.s
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.isBool {
		return json.Marshal(v.b)
	}
	return json.Marshal(v.s)
}

// UnmarshalJSON accepts a JSON string or boolean and rejects anything else
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
		return nil
	default:
		return fmt.Errorf("unsupported value %s: want string or boolean", data)
	}
}
