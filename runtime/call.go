package pruntime

import "github.com/gosuda/pseudocode/ast"

// callFunc invokes a function or procedure by identifier ID. Actual
// arguments are evaluated left to right and must match the declared
// parameter types exactly; BYREF formals are refused. Every formal's
// prior binding is shadowed for the duration of the call and restored
// afterwards, with call_number bracketing the frame. The returned value
// is nil for procedures.
func (vm *VM) callFunc(id int64, args []ast.Expr) (*Value, error) {
	fn := vm.getFunc(id)
	if fn == nil {
		return nil, runtimeErrorf("call of undefined function or procedure")
	}
	if len(args) != len(fn.Params) {
		return nil, runtimeErrorf("invalid number of parameters for function")
	}

	argtypes := make([]EType, len(args))
	argvals := make([]Value, len(args))
	for i, arg := range args {
		t, err := vm.exprType(arg)
		if err != nil {
			return nil, err
		}
		ptype, err := vm.toEType(fn.Params[i].Type)
		if err != nil {
			return nil, err
		}
		if err := expectType(t, ptype); err != nil {
			return nil, err
		}
		v, err := vm.evalExpr(arg)
		if err != nil {
			return nil, err
		}
		argtypes[i] = ptype
		argvals[i] = v
	}

	old := make([]savedVar, len(fn.Params))
	for i, p := range fn.Params {
		if p.ByRef {
			return nil, runtimeErrorf("BYREF is not supported")
		}
		old[i] = vm.saveVar(p.ID)
	}

	vm.callNumber++
	for i, p := range fn.Params {
		vm.deleteVar(p.ID)
		vm.setType(p.ID, argtypes[i])
		vm.setLevel(p.ID, vm.callNumber)
		*vm.value(p.ID) = argvals[i]
		if argtypes[i].IsArray && vm.value(p.ID).A == nil {
			*vm.value(p.ID) = defaultValue(argtypes[i])
		}
	}

	ret, err := vm.runBlock(&fn.Blocks[0])
	if err != nil {
		return nil, err
	}
	if ret == nil && len(fn.Types) != 0 {
		return nil, typeErrorf("function didn't return")
	}
	var retval *Value
	if ret != nil {
		rtype, err := vm.exprType(ret)
		if err != nil {
			return nil, err
		}
		declared, err := vm.toEType(fn.Types[0])
		if err != nil {
			return nil, err
		}
		if err := expectType(rtype, declared); err != nil {
			return nil, err
		}
		v, err := vm.evalExpr(ret)
		if err != nil {
			return nil, err
		}
		retval = &v
	}

	vm.callNumber--
	for i, p := range fn.Params {
		vm.restoreVar(p.ID, old[i])
	}
	return retval, nil
}
