package stat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind distinguishes numeric from textual stat values.
type Kind int

const (
	// Number is an integer-valued stat; the zero Kind.
	Number Kind = iota
	// Text is a string-valued stat such as Clan or Nature.
	Text
)

// String returns "number" or "text".
func (k Kind) String() string {
	if k == Text {
		return "text"
	}
	return "number"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "", "number", "int":
		*k = Number
	case "text", "string":
		*k = Text
	default:
		return fmt.Errorf("stat: unknown kind %q", b)
	}
	return nil
}

// Value is a tagged number-or-text stat value. The zero Value is the number 0.
type Value struct {
	kind Kind
	num  int
	text string
}

// Int returns a numeric Value.
func Int(n int) Value { return Value{kind: Number, num: n} }

// Str returns a textual Value.
func Str(s string) Value { return Value{kind: Text, text: s} }

// Zero returns the zero value of kind k: 0 or "".
func Zero(k Kind) Value { return Value{kind: k} }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNumber reports whether v is numeric.
func (v Value) IsNumber() bool { return v.kind == Number }

// Int returns the numeric value and true, or 0 and false for text.
func (v Value) Int() (int, bool) {
	if v.kind != Number {
		return 0, false
	}
	return v.num, true
}

// IsZero reports whether v is 0 or "".
func (v Value) IsZero() bool {
	if v.kind == Text {
		return v.text == ""
	}
	return v.num == 0
}

// String renders the value for display.
func (v Value) String() string {
	if v.kind == Text {
		return v.text
	}
	return strconv.Itoa(v.num)
}

// Equal reports whether v and o have the same kind and content. Text
// comparison is case-insensitive.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == Text {
		return strings.EqualFold(v.text, o.text)
	}
	return v.num == o.num
}

// MarshalJSON encodes a number as a JSON number and text as a JSON string.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == Text {
		return json.Marshal(v.text)
	}
	return json.Marshal(v.num)
}

// UnmarshalJSON accepts a JSON number, a JSON string or null (the number 0).
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*v = Int(0)
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Str(s)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("stat: value %s: %w", b, ErrNotANumber)
	}
	*v = Int(n)
	return nil
}

// MarshalYAML encodes the value as a YAML int or string.
func (v Value) MarshalYAML() (any, error) {
	if v.kind == Text {
		return v.text, nil
	}
	return v.num, nil
}

// UnmarshalYAML decodes a YAML scalar; integers become numbers, anything else text.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("stat: line %d: value must be a scalar", node.Line)
	}
	if node.Tag == "!!int" {
		var n int
		if err := node.Decode(&n); err != nil {
			return err
		}
		*v = Int(n)
		return nil
	}
	*v = Str(node.Value)
	return nil
}
