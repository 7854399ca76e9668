// Package vm implements bug's execution engine: a frame-stack interpreter
// that runs a value.Program to completion starting from main.
//
// Grounded on teacher vm/frame.go's ip/basePointer/code-reference frame
// shape (the teacher repo's own dispatch loop, vm.go, was absent from the
// retrieval pack, so the loop itself is grounded on
// original_source/bvm/engine.rs and original_source/vm/frame.rs instead).
package vm

import (
	"github.com/edilson258/bug/bytecode"
	"github.com/edilson258/bug/value"
)

// frame is one function activation: its own operand stack, its local
// variable slots (pre-sized to the function's declared max_locals), and a
// cursor into its own instruction stream.
type frame struct {
	name    string
	pc      int
	code    bytecode.Instructions
	locals  []value.Value
	operand []value.Value
}

func newFrame(name string, code bytecode.Instructions, maxLocals int) *frame {
	return &frame{name: name, code: code, locals: make([]value.Value, maxLocals)}
}

func (f *frame) push(v value.Value) {
	f.operand = append(f.operand, v)
}

func (f *frame) pop() (value.Value, bool) {
	if len(f.operand) == 0 {
		return value.Value{}, false
	}
	v := f.operand[len(f.operand)-1]
	f.operand = f.operand[:len(f.operand)-1]
	return v, true
}
