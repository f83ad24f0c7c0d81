package pruntime

import (
	"strconv"
	"strings"

	"github.com/gosuda/pseudocode/ast"
	"github.com/gosuda/pseudocode/lexer"
)

// Primitive is the scalar type tag. The zero value INVALID marks a
// variable that has never been declared or assigned; it is not a legal
// operand of any operator.
type Primitive int

const (
	INVALID Primitive = iota
	INTEGER
	REAL
	CHAR
	STRING
	BOOLEAN
	DATE
)

var primNames = [...]string{
	INVALID: "INVALID", INTEGER: "INTEGER", REAL: "REAL", CHAR: "CHAR",
	STRING: "STRING", BOOLEAN: "BOOLEAN", DATE: "DATE",
}

func (p Primitive) String() string {
	if p < 0 || int(p) >= len(primNames) {
		return "INVALID"
	}
	return primNames[p]
}

// Bound is one dimension's inclusive index range.
type Bound struct {
	Lo int64
	Hi int64
}

// EType is the effective type of a value: a primitive tag plus, for
// arrays, the ordered bounds of every dimension (outermost first).
type EType struct {
	Prim    Primitive
	IsArray bool
	Bounds  []Bound
}

func scalar(p Primitive) EType {
	return EType{Prim: p}
}

func (t EType) Equal(o EType) bool {
	if t.Prim != o.Prim || t.IsArray != o.IsArray || len(t.Bounds) != len(o.Bounds) {
		return false
	}
	for i, b := range t.Bounds {
		if b != o.Bounds[i] {
			return false
		}
	}
	return true
}

// Elem is the type obtained by indexing through every dimension.
func (t EType) Elem() EType {
	return scalar(t.Prim)
}

func (t EType) String() string {
	if !t.IsArray {
		return t.Prim.String()
	}
	var b strings.Builder
	b.WriteString("ARRAY[")
	for i, bound := range t.Bounds {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatInt(bound.Lo, 10))
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(bound.Hi, 10))
	}
	b.WriteString("] OF ")
	b.WriteString(t.Prim.String())
	return b.String()
}

func isNumeric(t EType) bool {
	return !t.IsArray && (t.Prim == INTEGER || t.Prim == REAL)
}

// expectType asserts that t equals one of the wanted types.
func expectType(t EType, want ...EType) error {
	for _, w := range want {
		if t.Equal(w) {
			return nil
		}
	}
	if len(want) == 1 {
		return typeErrorf("bad type %s, expected %s", t, want[0])
	}
	names := make([]string, len(want))
	for i, w := range want {
		names[i] = w.String()
	}
	return typeErrorf("bad type %s, expected any of: %s", t, strings.Join(names, ", "))
}

// toEType resolves a syntactic type descriptor to an effective type.
// Array bounds are expressions; they are evaluated here, once, and must be
// INTEGER with lo <= hi.
func (vm *VM) toEType(t ast.TypeNode) (EType, error) {
	if !t.IsArray() {
		switch t.Prim {
		case lexer.INTEGER:
			return scalar(INTEGER), nil
		case lexer.REAL:
			return scalar(REAL), nil
		case lexer.STRING:
			return scalar(STRING), nil
		case lexer.CHAR:
			return scalar(CHAR), nil
		case lexer.BOOLEAN:
			return scalar(BOOLEAN), nil
		case lexer.DATE:
			return scalar(DATE), nil
		default:
			return EType{}, runtimeErrorf("invalid type primitive (INTERNAL ERROR)")
		}
	}
	for _, bound := range []ast.Expr{t.Start, t.End} {
		bt, err := vm.exprType(bound)
		if err != nil {
			return EType{}, err
		}
		if err := expectType(bt, scalar(INTEGER)); err != nil {
			return EType{}, typeErrorf("array bounds must be INTEGERs")
		}
	}
	lo, err := vm.evalExpr(t.Start)
	if err != nil {
		return EType{}, err
	}
	hi, err := vm.evalExpr(t.End)
	if err != nil {
		return EType{}, err
	}
	if lo.I > hi.I {
		return EType{}, typeErrorf("cannot have array with larger start index than end")
	}
	elem, err := vm.toEType(*t.Elem)
	if err != nil {
		return EType{}, err
	}
	bounds := append([]Bound{{Lo: lo.I, Hi: hi.I}}, elem.Bounds...)
	return EType{Prim: elem.Prim, IsArray: true, Bounds: bounds}, nil
}
