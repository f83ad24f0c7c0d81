package pruntime

import (
	"github.com/gosuda/pseudocode/ast"
	"github.com/gosuda/pseudocode/lexer"
)

// exprType computes the effective type of an expression, enforcing the
// language's implicit-conversion rules. It does not mutate the
// environment, so repeated calls agree.
func (vm *VM) exprType(e ast.Expr) (EType, error) {
	switch ex := e.(type) {
	case ast.IntLit:
		return scalar(INTEGER), nil
	case ast.RealLit:
		return scalar(REAL), nil
	case ast.StrLit:
		return scalar(STRING), nil
	case ast.BoolLit:
		return scalar(BOOLEAN), nil
	case *ast.LValue:
		return vm.lvalueType(ex)
	case *ast.CallExpr:
		fn := vm.getFunc(ex.ID)
		if fn == nil {
			return EType{}, runtimeErrorf("call of undefined function or procedure")
		}
		if len(fn.Types) == 0 {
			return EType{}, typeErrorf("cannot call procedure and use it as a value")
		}
		return vm.toEType(fn.Types[0])
	case *ast.UnaryExpr:
		t, err := vm.exprType(ex.Expr)
		if err != nil {
			return EType{}, err
		}
		if ex.Op == lexer.NOT {
			if err := expectType(t, scalar(BOOLEAN)); err != nil {
				return EType{}, err
			}
			return scalar(BOOLEAN), nil
		}
		// unary minus
		if err := expectType(t, scalar(INTEGER), scalar(REAL)); err != nil {
			return EType{}, err
		}
		return t, nil
	case *ast.BinaryExpr:
		return vm.binaryType(ex)
	default:
		return EType{}, runtimeErrorf("invalid expression node (INTERNAL ERROR)")
	}
}

func (vm *VM) binaryType(ex *ast.BinaryExpr) (EType, error) {
	ltype, err := vm.exprType(ex.Left)
	if err != nil {
		return EType{}, err
	}
	rtype, err := vm.exprType(ex.Right)
	if err != nil {
		return EType{}, err
	}
	switch ex.Op {
	case lexer.OR, lexer.AND:
		if err := expectType(ltype, scalar(BOOLEAN)); err != nil {
			return EType{}, err
		}
		if err := expectType(rtype, scalar(BOOLEAN)); err != nil {
			return EType{}, err
		}
		return scalar(BOOLEAN), nil

	case lexer.EQ, lexer.NEQ, lexer.LT, lexer.LTEQ, lexer.GT, lexer.GTEQ:
		if ltype.IsArray || rtype.IsArray {
			return EType{}, typeErrorf("cannot compare arrays")
		}
		// One REAL side promotes an INTEGER other side; anything else
		// must match exactly.
		if (ltype.Prim == REAL && rtype.Prim == INTEGER) ||
			(ltype.Prim == INTEGER && rtype.Prim == REAL) {
			return scalar(BOOLEAN), nil
		}
		if ltype.Prim == INVALID || !ltype.Equal(rtype) {
			return EType{}, typeErrorf("cannot compare two different types")
		}
		return scalar(BOOLEAN), nil

	case lexer.PLUS, lexer.MINUS, lexer.STAR:
		if !isNumeric(ltype) || !isNumeric(rtype) {
			return EType{}, typeErrorf("invalid type applied to math expression")
		}
		if ltype.Prim == REAL || rtype.Prim == REAL {
			return scalar(REAL), nil
		}
		return scalar(INTEGER), nil

	case lexer.SLASH:
		if !isNumeric(ltype) || !isNumeric(rtype) {
			return EType{}, typeErrorf("invalid type applied to math expression")
		}
		return scalar(REAL), nil

	case lexer.MOD, lexer.DIV:
		if err := expectType(ltype, scalar(INTEGER)); err != nil {
			return EType{}, err
		}
		if err := expectType(rtype, scalar(INTEGER)); err != nil {
			return EType{}, err
		}
		return scalar(INTEGER), nil

	default:
		return EType{}, runtimeErrorf("invalid binary operator (INTERNAL ERROR)")
	}
}

// lvalueType types a plain or indexed variable reference. Indexing
// requires an array base with exactly one index per dimension, each typed
// INTEGER; the result drops all bounds.
func (vm *VM) lvalueType(lv *ast.LValue) (EType, error) {
	t := vm.getType(lv.ID)
	if lv.Indexes == nil {
		return t, nil
	}
	if !t.IsArray || len(lv.Indexes) != len(t.Bounds) {
		return EType{}, typeErrorf("[] used on %s with %d indexes", t, len(lv.Indexes))
	}
	for _, idx := range lv.Indexes {
		it, err := vm.exprType(idx)
		if err != nil {
			return EType{}, err
		}
		if err := expectType(it, scalar(INTEGER)); err != nil {
			return EType{}, err
		}
	}
	return t.Elem(), nil
}
