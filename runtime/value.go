package pruntime

import (
	"fmt"

	"github.com/gosuda/pseudocode/fraction"
)

// Date is an opaque calendar date, comparable for equality and ordering.
type Date struct {
	Year  int
	Month int
	Day   int
}

func (d Date) Compare(o Date) int {
	l := d.Year*10000 + d.Month*100 + d.Day
	r := o.Year*10000 + o.Month*100 + o.Day
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Value is the runtime representation of every language value. The type
// of the populated field is tracked separately as an EType; the record
// itself is untagged. Arrays own their backing storage exclusively: A
// holds hi-lo+1 elements for the first bound, each element an array or
// scalar per the remaining bounds.
type Value struct {
	I int64
	F fraction.Fraction
	C byte
	B bool
	S string
	D Date
	A []Value
}

// clone deep-copies a value so array storage is never shared between two
// owners.
func (v Value) clone() Value {
	if v.A == nil {
		return v
	}
	elems := make([]Value, len(v.A))
	for i, e := range v.A {
		elems[i] = e.clone()
	}
	v.A = elems
	return v
}

// defaultValue builds the declaration-time value for a type: zeroed
// scalars, and arrays fully allocated and recursively initialised.
func defaultValue(t EType) Value {
	if !t.IsArray {
		return Value{}
	}
	return defaultArray(t.Bounds)
}

func defaultArray(bounds []Bound) Value {
	if len(bounds) == 0 {
		return Value{}
	}
	elems := make([]Value, bounds[0].Hi-bounds[0].Lo+1)
	if len(bounds) > 1 {
		for i := range elems {
			elems[i] = defaultArray(bounds[1:])
		}
	}
	return Value{A: elems}
}
