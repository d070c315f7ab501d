// Package attr holds the typed attribute maps extracted from documents and
// the formatting language used to render labels and file names from them.
package attr

import (
	"fmt"
	"time"
)

// Type enumerates the value kinds an attribute map may carry.
type Type int

const (
	TypeString Type = iota
	TypeNumber
	TypeTime
)

var typeNames = [...]string{"string", "number", "time"}

func (t Type) String() string {
	if t < TypeString || t > TypeTime {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// NamedType resolves a stable type name back to its Type. The second return
// is false for unknown names.
func NamedType(name string) (Type, bool) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), true
		}
	}
	return TypeString, false
}

// Map is one document's extracted fields. Values are strings, int64 monetary
// amounts in minor currency units, or time.Time instants. A Map is built once
// by an extractor and never mutated afterwards; re-extraction builds a new
// one.
type Map map[string]any

// TypeOf classifies a value the way the formatter and the store see it.
// Anything that is not a supported number or a time is treated as a string.
func TypeOf(v any) Type {
	switch v.(type) {
	case int, int32, int64, uint, uint32, uint64:
		return TypeNumber
	case time.Time:
		return TypeTime
	default:
		return TypeString
	}
}

// Number returns the attribute as an int64 amount in minor units.
func (m Map) Number(key string) (int64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	return asInt64(v)
}

// Time returns the attribute as a timestamp.
func (m Map) Time(key string) (time.Time, bool) {
	v, ok := m[key]
	if !ok {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}

// String returns the plain string form of the attribute, empty when absent.
func (m Map) String(key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	return stringify(v)
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// FormatAmount renders an amount in minor units as "major.minor" with the
// minor part always two digits. Negative amounts carry the sign on the major
// part only: -50 renders as "-0.50".
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
