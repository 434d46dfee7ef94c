package tbo

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// The provider is inconsistent about scalar encodings: the same field arrives as a
// number, a quoted number, null, or is missing. These types decode all of those
// and fall back to the zero value instead of failing the surrounding object.

type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = 0
	raw, ok := scalarText(b)
	if !ok {
		return nil
	}
	if f, ok := parseFinite(raw); ok {
		*n = Number(f)
	}
	return nil
}

type Int int

func (n *Int) UnmarshalJSON(b []byte) error {
	*n = 0
	raw, ok := scalarText(b)
	if !ok {
		return nil
	}
	if f, ok := parseFinite(raw); ok {
		*n = Int(int(f))
	}
	return nil
}

// parseFinite rejects NaN and ±Inf, which ParseFloat accepts but JSON cannot encode.
func parseFinite(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

type Bool bool

func (v *Bool) UnmarshalJSON(b []byte) error {
	*v = false
	raw, ok := scalarText(b)
	if !ok {
		return nil
	}
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		*v = true
	}
	return nil
}

type String string

func (s *String) UnmarshalJSON(b []byte) error {
	*s = ""
	raw, ok := scalarText(b)
	if !ok {
		return nil
	}
	*s = String(raw)
	return nil
}

// scalarText returns the textual value of a JSON string, number or bool.
// Objects, arrays and null report ok=false.
func scalarText(b []byte) (string, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return "", false
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	case '{', '[', 'n':
		return "", false
	default:
		return string(b), true
	}
}

// IsArray reports whether raw holds a JSON array.
func IsArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// Elements decodes raw as an array of undecoded elements. Anything that is not an
// array (missing, null, object, scalar) yields no elements.
func Elements(raw json.RawMessage) []json.RawMessage {
	if !IsArray(raw) {
		return nil
	}
	var out []json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
