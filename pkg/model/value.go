/*
 * Copyright © 2019 One Concern
 *
 */

package model

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// ValueKind enumerates the kinds of values a field may hold
type ValueKind int

// Supported value kinds
const (
	InvalidKind ValueKind = iota
	BooleanKind
	IntegerKind
	LongKind
	DoubleKind
	StringKind
	IDKind
	BooleanListKind
	IntegerListKind
	LongListKind
	DoubleListKind
	StringListKind
	IDListKind
	StringSetKind
	IDSetKind
)

var valueKindNames = map[ValueKind]string{
	BooleanKind:     "boolean",
	IntegerKind:     "integer",
	LongKind:        "long",
	DoubleKind:      "double",
	StringKind:      "string",
	IDKind:          "id",
	BooleanListKind: "boolean-list",
	IntegerListKind: "integer-list",
	LongListKind:    "long-list",
	DoubleListKind:  "double-list",
	StringListKind:  "string-list",
	IDListKind:      "id-list",
	StringSetKind:   "string-set",
	IDSetKind:       "id-set",
}

func (k ValueKind) String() string {
	if name, ok := valueKindNames[k]; ok {
		return name
	}
	return "invalid"
}

// ParseValueKind parses the string form of a ValueKind
func ParseValueKind(s string) (ValueKind, bool) {
	for k, name := range valueKindNames {
		if name == s {
			return k, true
		}
	}
	return InvalidKind, false
}

// Value is an immutable value stored in a field.
//
// Values compare structurally with Equal.
type Value interface {
	Kind() ValueKind
	Equal(Value) bool
	String() string
}

// ValuesEqual compares two possibly absent values
func ValuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

type (
	// Boolean value
	Boolean bool
	// Integer value (32 bits)
	Integer int32
	// Long value (64 bits)
	Long int64
	// Double value
	Double float64
	// String value
	String string
)

// Kind of value
func (Boolean) Kind() ValueKind { return BooleanKind }

// Equal compares values
func (v Boolean) Equal(o Value) bool { w, ok := o.(Boolean); return ok && w == v }

func (v Boolean) String() string { return strconv.FormatBool(bool(v)) }

// Kind of value
func (Integer) Kind() ValueKind { return IntegerKind }

// Equal compares values
func (v Integer) Equal(o Value) bool { w, ok := o.(Integer); return ok && w == v }

func (v Integer) String() string { return strconv.FormatInt(int64(v), 10) }

// Kind of value
func (Long) Kind() ValueKind { return LongKind }

// Equal compares values
func (v Long) Equal(o Value) bool { w, ok := o.(Long); return ok && w == v }

func (v Long) String() string { return strconv.FormatInt(int64(v), 10) }

// Kind of value
func (Double) Kind() ValueKind { return DoubleKind }

// Equal compares values
func (v Double) Equal(o Value) bool { w, ok := o.(Double); return ok && w == v }

func (v Double) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }

// Kind of value
func (String) Kind() ValueKind { return StringKind }

// Equal compares values
func (v String) Equal(o Value) bool { w, ok := o.(String); return ok && w == v }

func (v String) String() string { return string(v) }

// Kind of value. An ID used as a value is a reference to another entity.
func (ID) Kind() ValueKind { return IDKind }

// Equal compares values
func (id ID) Equal(o Value) bool { w, ok := o.(ID); return ok && w == id }

// ListValue is an ordered, immutable collection of values of one kind
type ListValue[T comparable] struct {
	kind  ValueKind
	items []T
}

type (
	// BooleanList value
	BooleanList = ListValue[bool]
	// IntegerList value
	IntegerList = ListValue[int32]
	// LongList value
	LongList = ListValue[int64]
	// DoubleList value
	DoubleList = ListValue[float64]
	// StringList value
	StringList = ListValue[string]
	// IDList value, used for ordered references
	IDList = ListValue[ID]
)

func newList[T comparable](kind ValueKind, items []T) ListValue[T] {
	return ListValue[T]{kind: kind, items: slices.Clone(items)}
}

// NewBooleanList builds a list value
func NewBooleanList(items ...bool) BooleanList { return newList(BooleanListKind, items) }

// NewIntegerList builds a list value
func NewIntegerList(items ...int32) IntegerList { return newList(IntegerListKind, items) }

// NewLongList builds a list value
func NewLongList(items ...int64) LongList { return newList(LongListKind, items) }

// NewDoubleList builds a list value
func NewDoubleList(items ...float64) DoubleList { return newList(DoubleListKind, items) }

// NewStringList builds a list value
func NewStringList(items ...string) StringList { return newList(StringListKind, items) }

// NewIDList builds a list value
func NewIDList(items ...ID) IDList { return newList(IDListKind, items) }

// Kind of value
func (l ListValue[T]) Kind() ValueKind { return l.kind }

// Len of the list
func (l ListValue[T]) Len() int { return len(l.items) }

// At yields the i-th element
func (l ListValue[T]) At(i int) T { return l.items[i] }

// Items returns a copy of the elements
func (l ListValue[T]) Items() []T { return slices.Clone(l.items) }

// Contains tells if the list holds an element
func (l ListValue[T]) Contains(item T) bool { return slices.Contains(l.items, item) }

// Equal compares values
func (l ListValue[T]) Equal(o Value) bool {
	w, ok := o.(ListValue[T])
	return ok && w.kind == l.kind && slices.Equal(w.items, l.items)
}

func (l ListValue[T]) String() string {
	return renderItems(l.items)
}

// SetValue is an unordered, immutable collection of distinct values of one kind
type SetValue[T constraints.Ordered] struct {
	kind  ValueKind
	items []T // sorted, without duplicates
}

type (
	// StringSet value
	StringSet = SetValue[string]
	// IDSet value, used for unordered references
	IDSet = SetValue[ID]
)

func newSet[T constraints.Ordered](kind ValueKind, items []T) SetValue[T] {
	sorted := slices.Clone(items)
	slices.Sort(sorted)
	return SetValue[T]{kind: kind, items: slices.Compact(sorted)}
}

// NewStringSet builds a set value
func NewStringSet(items ...string) StringSet { return newSet(StringSetKind, items) }

// NewIDSet builds a set value
func NewIDSet(items ...ID) IDSet { return newSet(IDSetKind, items) }

// Kind of value
func (s SetValue[T]) Kind() ValueKind { return s.kind }

// Len of the set
func (s SetValue[T]) Len() int { return len(s.items) }

// Items returns the elements in ascending order
func (s SetValue[T]) Items() []T { return slices.Clone(s.items) }

// Contains tells if the set holds an element
func (s SetValue[T]) Contains(item T) bool {
	_, found := slices.BinarySearch(s.items, item)
	return found
}

// Equal compares values
func (s SetValue[T]) Equal(o Value) bool {
	w, ok := o.(SetValue[T])
	return ok && w.kind == s.kind && slices.Equal(w.items, s.items)
}

func (s SetValue[T]) String() string {
	return "{" + strings.Trim(renderItems(s.items), "[]") + "}"
}

func renderItems[T any](items []T) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprint(item))
	}
	return "[" + strings.Join(parts, ",") + "]"
}
