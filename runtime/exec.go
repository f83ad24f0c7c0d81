package pruntime

import (
	"github.com/gosuda/pseudocode/ast"
	"github.com/gosuda/pseudocode/fraction"
)

// runTopStmt executes one top-level statement. Declarations, constants
// and subprogram definitions are only meaningful here; every other form
// shares the nested dispatch.
func (vm *VM) runTopStmt(stmt *ast.Stmt) error {
	switch stmt.Form {
	case ast.StmtDeclare:
		t, err := vm.toEType(stmt.Types[0])
		if err != nil {
			return err
		}
		vm.setType(stmt.IDs[0], t)
		vm.setLevel(stmt.IDs[0], 0)
		*vm.value(stmt.IDs[0]) = defaultValue(t)
		return nil
	case ast.StmtConstant:
		t, err := vm.exprType(stmt.Exprs[0])
		if err != nil {
			return err
		}
		v, err := vm.evalExpr(stmt.Exprs[0])
		if err != nil {
			return err
		}
		vm.setType(stmt.IDs[0], t)
		vm.setLevel(stmt.IDs[0], 0)
		*vm.value(stmt.IDs[0]) = v
		return nil
	case ast.StmtProcedure, ast.StmtFunction:
		vm.defFunc(stmt.IDs[0], stmt)
		return nil
	default:
		_, err := vm.runStmt(stmt)
		return err
	}
}

// runStmt executes a nested statement. A non-nil returned expression is a
// surfacing RETURN signal; the expression is not evaluated here.
func (vm *VM) runStmt(stmt *ast.Stmt) (ast.Expr, error) {
	switch stmt.Form {
	case ast.StmtAssign:
		return nil, vm.runAssign(stmt)
	case ast.StmtInput:
		return nil, runtimeErrorf("inputting not implemented yet")
	case ast.StmtOutput:
		return nil, vm.runOutput(stmt)
	case ast.StmtIf:
		return vm.runIf(stmt)
	case ast.StmtCase:
		return vm.runCase(stmt)
	case ast.StmtFor:
		return vm.runFor(stmt)
	case ast.StmtRepeat:
		return vm.runRepeat(stmt)
	case ast.StmtWhile:
		return vm.runWhile(stmt)
	case ast.StmtCall:
		_, err := vm.callFunc(stmt.IDs[0], stmt.Exprs)
		return nil, err
	default:
		// RETURN is lifted by runBlock; declarations only exist at the
		// top level.
		return nil, runtimeErrorf("invalid start of statement (INTERNAL ERROR)")
	}
}

// runBlock executes statements in order. A RETURN statement stops the
// block and surfaces its unevaluated expression; a return signal from a
// nested statement propagates when the block belongs to a function body.
func (vm *VM) runBlock(block *ast.Block) (ast.Expr, error) {
	for i := range block.Stmts {
		stmt := &block.Stmts[i]
		if stmt.Form == ast.StmtReturn {
			return stmt.Exprs[0], nil
		}
		ret, err := vm.runStmt(stmt)
		if err != nil {
			return nil, err
		}
		if block.IsFunc && ret != nil {
			return ret, nil
		}
	}
	return nil, nil
}

func (vm *VM) runAssign(stmt *ast.Stmt) error {
	lv := stmt.LValues[0]
	ltype, err := vm.lvalueType(lv)
	if err != nil {
		return err
	}
	if ltype.Prim == INVALID {
		return runtimeErrorf("undefined variable")
	}
	rtype, err := vm.exprType(stmt.Exprs[0])
	if err != nil {
		return err
	}
	if ltype.Prim == REAL && !ltype.IsArray && rtype.Prim == INTEGER && !rtype.IsArray {
		v, err := vm.evalExpr(stmt.Exprs[0])
		if err != nil {
			return err
		}
		slot, err := vm.lvalueRef(lv)
		if err != nil {
			return err
		}
		*slot = Value{F: fraction.FromInt(v.I)}
		return nil
	}
	if err := expectType(rtype, ltype); err != nil {
		return err
	}
	v, err := vm.evalExpr(stmt.Exprs[0])
	if err != nil {
		return err
	}
	slot, err := vm.lvalueRef(lv)
	if err != nil {
		return err
	}
	*slot = v
	return nil
}

func (vm *VM) runOutput(stmt *ast.Stmt) error {
	for _, expr := range stmt.Exprs {
		t, err := vm.exprType(expr)
		if err != nil {
			return err
		}
		if t.Prim == INVALID {
			return runtimeErrorf("undefined variable")
		}
		v, err := vm.evalExpr(expr)
		if err != nil {
			return err
		}
		if err := vm.output(v, t); err != nil {
			return err
		}
	}
	return vm.writeString("\n")
}

func (vm *VM) runIf(stmt *ast.Stmt) (ast.Expr, error) {
	t, err := vm.exprType(stmt.Exprs[0])
	if err != nil {
		return nil, err
	}
	if err := expectType(t, scalar(BOOLEAN)); err != nil {
		return nil, err
	}
	cond, err := vm.evalExpr(stmt.Exprs[0])
	if err != nil {
		return nil, err
	}
	if cond.B {
		return vm.runBlock(&stmt.Blocks[0])
	}
	if len(stmt.Blocks) == 2 {
		return vm.runBlock(&stmt.Blocks[1])
	}
	return nil, nil
}

// runCase evaluates the selector once, then tries each branch expression
// in declared order; the first match wins. INTEGER and REAL cross-promote
// the way comparison does; no other mixed pairing is allowed.
func (vm *VM) runCase(stmt *ast.Stmt) (ast.Expr, error) {
	sel := stmt.LValues[0]
	seltype, err := vm.lvalueType(sel)
	if err != nil {
		return nil, err
	}
	if seltype.IsArray {
		return nil, typeErrorf("cannot use array in CASE OF")
	}
	val, err := vm.lvalueGet(sel)
	if err != nil {
		return nil, err
	}
	for i, expr := range stmt.Exprs {
		matched, err := vm.caseMatches(seltype, val, expr)
		if err != nil {
			return nil, err
		}
		if matched {
			return vm.runBlock(&stmt.Blocks[i])
		}
	}
	if len(stmt.Blocks) > len(stmt.Exprs) {
		// the trailing block is an OTHERWISE
		return vm.runBlock(&stmt.Blocks[len(stmt.Blocks)-1])
	}
	return nil, nil
}

func (vm *VM) caseMatches(seltype EType, val Value, expr ast.Expr) (bool, error) {
	exprtype, err := vm.exprType(expr)
	if err != nil {
		return false, err
	}
	if exprtype.IsArray {
		return false, typeErrorf("cannot use array in CASE OF case")
	}
	if (seltype.Prim == REAL || exprtype.Prim == REAL) && seltype.Prim != exprtype.Prim {
		switch {
		case seltype.Prim == INTEGER:
			v, err := vm.evalExpr(expr)
			if err != nil {
				return false, err
			}
			return v.F.Equal(fraction.FromInt(val.I)), nil
		case exprtype.Prim == INTEGER:
			v, err := vm.evalExpr(expr)
			if err != nil {
				return false, err
			}
			return val.F.Equal(fraction.FromInt(v.I)), nil
		default:
			return false, typeErrorf("cannot convert condition to REAL")
		}
	}
	if err := expectType(exprtype, seltype); err != nil {
		return false, err
	}
	v, err := vm.evalExpr(expr)
	if err != nil {
		return false, err
	}
	switch seltype.Prim {
	case INTEGER:
		return v.I == val.I, nil
	case REAL:
		return v.F.Equal(val.F), nil
	case CHAR:
		return v.C == val.C, nil
	case STRING:
		return v.S == val.S, nil
	case BOOLEAN:
		return v.B == val.B, nil
	case DATE:
		return v.D.Compare(val.D) == 0, nil
	default:
		return false, typeErrorf("use of unassigned type within CASE statement")
	}
}

// savedVar is a shadowed binding, restorable after a FOR loop or a call
// frame exits.
type savedVar struct {
	present bool
	typ     EType
	val     *Value
	level   int32
}

func (vm *VM) saveVar(id int64) savedVar {
	t := vm.getType(id)
	if t.Prim == INVALID {
		return savedVar{}
	}
	return savedVar{present: true, typ: t, val: vm.values[id], level: vm.getLevel(id)}
}

func (vm *VM) restoreVar(id int64, old savedVar) {
	vm.deleteVar(id)
	if !old.present {
		return
	}
	vm.types[id] = old.typ
	vm.values[id] = old.val
	vm.levels[id] = old.level
}

// runFor executes a counted loop. Start, end and step are evaluated once
// up front; if any is REAL the loop runs in rationals. The direction is
// inferred from the endpoints: ascending iterates while i <= end,
// descending while i >= end. The loop variable shadows any existing
// binding and is restored on every exit path, including a propagating
// RETURN.
func (vm *VM) runFor(stmt *ast.Stmt) (ast.Expr, error) {
	isFrac := false
	types := make([]EType, len(stmt.Exprs))
	for i, expr := range stmt.Exprs {
		t, err := vm.exprType(expr)
		if err != nil {
			return nil, err
		}
		if err := expectType(t, scalar(INTEGER), scalar(REAL)); err != nil {
			return nil, err
		}
		types[i] = t
		isFrac = isFrac || t.Prim == REAL
	}
	vals := make([]Value, len(stmt.Exprs))
	for i, expr := range stmt.Exprs {
		v, err := vm.evalExpr(expr)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}

	id := stmt.IDs[0]
	old := vm.saveVar(id)
	vm.deleteVar(id)
	if isFrac {
		vm.setType(id, scalar(REAL))
	} else {
		vm.setType(id, scalar(INTEGER))
	}
	vm.setLevel(id, vm.callNumber)

	var ret ast.Expr
	var err error
	if isFrac {
		for i := range vals {
			if types[i].Prim == INTEGER {
				vals[i] = Value{F: fraction.FromInt(vals[i].I)}
			}
		}
		step := fraction.FromInt(1)
		if len(vals) == 3 {
			step = vals[2].F
		}
		from, to := vals[0].F, vals[1].F
		ascending := from.Cmp(to) <= 0
		for loopvar := from; forCond(ascending, loopvar.Cmp(to)); loopvar = loopvar.Add(step) {
			*vm.value(id) = Value{F: loopvar}
			ret, err = vm.runBlock(&stmt.Blocks[0])
			if err != nil || ret != nil {
				break
			}
		}
	} else {
		step := int64(1)
		if len(vals) == 3 {
			step = vals[2].I
		}
		from, to := vals[0].I, vals[1].I
		ascending := from <= to
		for loopvar := from; forCond(ascending, compareOrdered(loopvar, to)); loopvar += step {
			*vm.value(id) = Value{I: loopvar}
			ret, err = vm.runBlock(&stmt.Blocks[0])
			if err != nil || ret != nil {
				break
			}
		}
	}
	vm.restoreVar(id, old)
	return ret, err
}

func forCond(ascending bool, cmp int) bool {
	if ascending {
		return cmp <= 0
	}
	return cmp >= 0
}

// runRepeat is the classic do-until: the block always runs once, and the
// loop exits when the condition turns true.
func (vm *VM) runRepeat(stmt *ast.Stmt) (ast.Expr, error) {
	t, err := vm.exprType(stmt.Exprs[0])
	if err != nil {
		return nil, err
	}
	if err := expectType(t, scalar(BOOLEAN)); err != nil {
		return nil, err
	}
	for {
		ret, err := vm.runBlock(&stmt.Blocks[0])
		if err != nil || ret != nil {
			return ret, err
		}
		cond, err := vm.evalExpr(stmt.Exprs[0])
		if err != nil {
			return nil, err
		}
		if cond.B {
			return nil, nil
		}
	}
}

func (vm *VM) runWhile(stmt *ast.Stmt) (ast.Expr, error) {
	t, err := vm.exprType(stmt.Exprs[0])
	if err != nil {
		return nil, err
	}
	if err := expectType(t, scalar(BOOLEAN)); err != nil {
		return nil, err
	}
	for {
		cond, err := vm.evalExpr(stmt.Exprs[0])
		if err != nil {
			return nil, err
		}
		if !cond.B {
			return nil, nil
		}
		ret, err := vm.runBlock(&stmt.Blocks[0])
		if err != nil || ret != nil {
			return ret, err
		}
	}
}
