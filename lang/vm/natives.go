package vm

import "github.com/mna/hypl/lang/object"

// importStd implements OP_IMPORT_STD: resolve moduleName through StdLoader
// and install each of its functions into globals under the
// "moduleName:symbol" namespace convention.
func (vm *VM) importStd(moduleName *object.ObjString) error {
	if vm.StdLoader == nil {
		return vm.runtimeError("no standard library configured: cannot import %q", moduleName.Chars)
	}
	fns, err := vm.StdLoader(moduleName.Chars)
	if err != nil {
		return vm.runtimeError("%s", err.Error())
	}
	for symbol, fn := range fns {
		vm.DefineNative(moduleName.Chars+":"+symbol, fn)
	}
	return nil
}
