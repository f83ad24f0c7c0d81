// Package pruntime executes a parsed program: it owns the variable and
// function tables, the type checker, the expression evaluator and the
// statement executor.
package pruntime

import (
	"io"
	"strconv"

	"github.com/gosuda/pseudocode/ast"
)

// VM is the runtime environment. Variables live in a single flat table
// keyed by identifier ID; lexical scope is realised by the executor saving
// and restoring the bindings it overwrites around FOR loops and calls.
// The per-entry scope level is advisory metadata recording the call depth
// at the point of binding; it never gates lookups.
type VM struct {
	program *ast.Program

	types  map[int64]EType
	values map[int64]*Value
	levels map[int64]int32
	funcs  map[int64]*ast.Stmt

	callNumber int32
	out        io.Writer
}

// New builds a VM for a program, writing OUTPUT statements to out.
func New(program *ast.Program, out io.Writer) *VM {
	return &VM{
		program: program,
		types:   map[int64]EType{},
		values:  map[int64]*Value{},
		levels:  map[int64]int32{},
		funcs:   map[int64]*ast.Stmt{},
		out:     out,
	}
}

// Run executes the top-level statement sequence. The first error aborts
// the run.
func (vm *VM) Run() error {
	for i := range vm.program.Stmts {
		if err := vm.runTopStmt(&vm.program.Stmts[i]); err != nil {
			return err
		}
	}
	return nil
}

// Variable table

func (vm *VM) getType(id int64) EType {
	return vm.types[id]
}

func (vm *VM) setType(id int64, t EType) {
	vm.types[id] = t
}

// getValue reads a variable's value. Reading an unset variable yields the
// zero record; callers type-check first.
func (vm *VM) getValue(id int64) Value {
	if v := vm.values[id]; v != nil {
		return *v
	}
	return Value{}
}

// value returns a mutable handle, creating the slot on first access.
func (vm *VM) value(id int64) *Value {
	v := vm.values[id]
	if v == nil {
		v = &Value{}
		vm.values[id] = v
	}
	return v
}

func (vm *VM) getLevel(id int64) int32 {
	return vm.levels[id]
}

func (vm *VM) setLevel(id int64, level int32) {
	vm.levels[id] = level
}

// deleteVar drops a variable's type, value and level, returning it to the
// undeclared state.
func (vm *VM) deleteVar(id int64) {
	delete(vm.types, id)
	delete(vm.values, id)
	delete(vm.levels, id)
}

// Function table

func (vm *VM) getFunc(id int64) *ast.Stmt {
	return vm.funcs[id]
}

func (vm *VM) defFunc(id int64, def *ast.Stmt) {
	vm.funcs[id] = def
}

// output renders one value to the sink. INTEGERs print as signed decimal,
// REALs as num/den with /den omitted for whole values, BOOLEANs as
// TRUE/FALSE, CHARs and STRINGs raw, DATEs as YYYY-MM-DD. Arrays render
// their elements space-separated in brackets.
func (vm *VM) output(v Value, t EType) error {
	if t.IsArray {
		if err := vm.writeString("["); err != nil {
			return err
		}
		elem := EType{Prim: t.Prim, IsArray: len(t.Bounds) > 1, Bounds: t.Bounds[1:]}
		for i, e := range v.A {
			if i > 0 {
				if err := vm.writeString(" "); err != nil {
					return err
				}
			}
			if err := vm.output(e, elem); err != nil {
				return err
			}
		}
		return vm.writeString("]")
	}
	switch t.Prim {
	case INTEGER:
		return vm.writeString(strconv.FormatInt(v.I, 10))
	case REAL:
		return vm.writeString(v.F.String())
	case CHAR:
		return vm.writeString(string(rune(v.C)))
	case STRING:
		return vm.writeString(v.S)
	case BOOLEAN:
		if v.B {
			return vm.writeString("TRUE")
		}
		return vm.writeString("FALSE")
	case DATE:
		return vm.writeString(v.D.String())
	default:
		return runtimeErrorf("output of unassigned type (INTERNAL ERROR)")
	}
}

func (vm *VM) writeString(s string) error {
	_, err := io.WriteString(vm.out, s)
	return err
}
