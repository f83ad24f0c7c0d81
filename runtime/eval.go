package pruntime

import (
	"strings"

	"github.com/gosuda/pseudocode/ast"
	"github.com/gosuda/pseudocode/fraction"
	"github.com/gosuda/pseudocode/lexer"
)

// evalExpr evaluates an expression whose type checking already passed.
func (vm *VM) evalExpr(e ast.Expr) (Value, error) {
	switch ex := e.(type) {
	case ast.IntLit:
		return Value{I: ex.Val}, nil
	case ast.RealLit:
		return Value{F: ex.Val}, nil
	case ast.StrLit:
		return Value{S: ex.Val}, nil
	case ast.BoolLit:
		return Value{B: ex.Val}, nil
	case *ast.LValue:
		return vm.lvalueGet(ex)
	case *ast.CallExpr:
		ret, err := vm.callFunc(ex.ID, ex.Args)
		if err != nil {
			return Value{}, err
		}
		if ret == nil {
			return Value{}, typeErrorf("cannot call procedure without using CALL")
		}
		return *ret, nil
	case *ast.UnaryExpr:
		return vm.evalUnary(ex)
	case *ast.BinaryExpr:
		return vm.evalBinary(ex)
	default:
		return Value{}, runtimeErrorf("invalid expression node (INTERNAL ERROR)")
	}
}

func (vm *VM) evalUnary(ex *ast.UnaryExpr) (Value, error) {
	t, err := vm.exprType(ex.Expr)
	if err != nil {
		return Value{}, err
	}
	switch ex.Op {
	case lexer.NOT:
		if err := expectType(t, scalar(BOOLEAN)); err != nil {
			return Value{}, err
		}
		v, err := vm.evalExpr(ex.Expr)
		if err != nil {
			return Value{}, err
		}
		return Value{B: !v.B}, nil
	case lexer.MINUS:
		if err := expectType(t, scalar(INTEGER), scalar(REAL)); err != nil {
			return Value{}, err
		}
		v, err := vm.evalExpr(ex.Expr)
		if err != nil {
			return Value{}, err
		}
		if t.Prim == INTEGER {
			return Value{I: -v.I}, nil
		}
		return Value{F: v.F.Neg()}, nil
	default:
		return Value{}, runtimeErrorf("invalid unary operator (INTERNAL ERROR)")
	}
}

func (vm *VM) evalBinary(ex *ast.BinaryExpr) (Value, error) {
	left, err := vm.evalExpr(ex.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := vm.evalExpr(ex.Right)
	if err != nil {
		return Value{}, err
	}
	switch ex.Op {
	case lexer.OR:
		return Value{B: left.B || right.B}, nil
	case lexer.AND:
		return Value{B: left.B && right.B}, nil
	case lexer.EQ, lexer.NEQ, lexer.LT, lexer.LTEQ, lexer.GT, lexer.GTEQ:
		return vm.evalComparison(ex, left, right)
	case lexer.PLUS, lexer.MINUS, lexer.STAR, lexer.SLASH:
		return vm.evalArith(ex, left, right)
	case lexer.MOD, lexer.DIV:
		if right.I == 0 {
			return Value{}, runtimeErrorf("division by zero")
		}
		if ex.Op == lexer.DIV {
			return Value{I: left.I / right.I}, nil
		}
		return Value{I: left.I % right.I}, nil
	default:
		return Value{}, runtimeErrorf("invalid binary operator (INTERNAL ERROR)")
	}
}

// evalComparison compares two scalars. When one side is REAL and the
// other INTEGER, the INTEGER operand is promoted; the operand order is
// preserved either way.
func (vm *VM) evalComparison(ex *ast.BinaryExpr, left, right Value) (Value, error) {
	ltype, err := vm.exprType(ex.Left)
	if err != nil {
		return Value{}, err
	}
	rtype, err := vm.exprType(ex.Right)
	if err != nil {
		return Value{}, err
	}
	var cmp int
	switch {
	case ltype.Prim == REAL && rtype.Prim == INTEGER:
		cmp = left.F.Cmp(fraction.FromInt(right.I))
	case ltype.Prim == INTEGER && rtype.Prim == REAL:
		cmp = fraction.FromInt(left.I).Cmp(right.F)
	case ltype.Prim != rtype.Prim:
		return Value{}, typeErrorf("cannot compare two different types")
	default:
		switch ltype.Prim {
		case INTEGER:
			cmp = compareOrdered(left.I, right.I)
		case REAL:
			cmp = left.F.Cmp(right.F)
		case CHAR:
			cmp = compareOrdered(left.C, right.C)
		case BOOLEAN:
			cmp = compareOrdered(boolOrd(left.B), boolOrd(right.B))
		case STRING:
			cmp = strings.Compare(left.S, right.S)
		case DATE:
			cmp = left.D.Compare(right.D)
		default:
			return Value{}, runtimeErrorf("invalid comparison types (INTERNAL ERROR)")
		}
	}
	switch ex.Op {
	case lexer.EQ:
		return Value{B: cmp == 0}, nil
	case lexer.NEQ:
		return Value{B: cmp != 0}, nil
	case lexer.LT:
		return Value{B: cmp < 0}, nil
	case lexer.LTEQ:
		return Value{B: cmp <= 0}, nil
	case lexer.GT:
		return Value{B: cmp > 0}, nil
	default: // GTEQ
		return Value{B: cmp >= 0}, nil
	}
}

func compareOrdered[T int64 | byte | int](l, r T) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

func boolOrd(b bool) int {
	if b {
		return 1
	}
	return 0
}

// evalArith handles + - * /. A mixed INTEGER/REAL operation widens the
// integer at the operation site and proceeds in the rational domain; /
// always does.
func (vm *VM) evalArith(ex *ast.BinaryExpr, left, right Value) (Value, error) {
	ltype, err := vm.exprType(ex.Left)
	if err != nil {
		return Value{}, err
	}
	rtype, err := vm.exprType(ex.Right)
	if err != nil {
		return Value{}, err
	}
	if ex.Op != lexer.SLASH && ltype.Prim == INTEGER && rtype.Prim == INTEGER {
		switch ex.Op {
		case lexer.PLUS:
			return Value{I: left.I + right.I}, nil
		case lexer.MINUS:
			return Value{I: left.I - right.I}, nil
		default: // STAR
			return Value{I: left.I * right.I}, nil
		}
	}
	lf := left.F
	if ltype.Prim == INTEGER {
		lf = fraction.FromInt(left.I)
	}
	rf := right.F
	if rtype.Prim == INTEGER {
		rf = fraction.FromInt(right.I)
	}
	switch ex.Op {
	case lexer.PLUS:
		return Value{F: lf.Add(rf)}, nil
	case lexer.MINUS:
		return Value{F: lf.Sub(rf)}, nil
	case lexer.STAR:
		return Value{F: lf.Mul(rf)}, nil
	default: // SLASH
		q, err := lf.Div(rf)
		if err != nil {
			return Value{}, runtimeErrorf("division by zero")
		}
		return Value{F: q}, nil
	}
}

// lvalueGet reads through an lvalue. A whole-array read copies the
// backing storage so the caller owns the result.
func (vm *VM) lvalueGet(lv *ast.LValue) (Value, error) {
	if lv.Indexes == nil {
		return vm.getValue(lv.ID).clone(), nil
	}
	slot, err := vm.lvalueRef(lv)
	if err != nil {
		return Value{}, err
	}
	return slot.clone(), nil
}

// lvalueRef returns a mutable handle to the slot an lvalue names,
// checking every index expression's type and bounds on the way down.
func (vm *VM) lvalueRef(lv *ast.LValue) (*Value, error) {
	t := vm.getType(lv.ID)
	val := vm.value(lv.ID)
	if lv.Indexes == nil {
		return val, nil
	}
	if len(lv.Indexes) != len(t.Bounds) {
		return nil, typeErrorf("[] used on %s with %d indexes", t, len(lv.Indexes))
	}
	for i, bound := range t.Bounds {
		it, err := vm.exprType(lv.Indexes[i])
		if err != nil {
			return nil, err
		}
		if err := expectType(it, scalar(INTEGER)); err != nil {
			return nil, err
		}
		iv, err := vm.evalExpr(lv.Indexes[i])
		if err != nil {
			return nil, err
		}
		if iv.I < bound.Lo || iv.I > bound.Hi {
			return nil, runtimeErrorf("out-of-bounds index %d", iv.I)
		}
		val = &val.A[iv.I-bound.Lo]
	}
	return val, nil
}
