package vm

import (
	"fmt"

	"github.com/edilson258/bug/bytecode"
	"github.com/edilson258/bug/types"
	"github.com/edilson258/bug/value"
)

// RuntimeError is a fatal condition raised while running a Program: a
// stack underflow, an out-of-range index, a fetch past the end of a
// function's code, or a call to an undefined name. spec.md §4.3 treats
// these as implementation-level asserts the checker is supposed to make
// unreachable, so RuntimeError always names the frame it happened in,
// the way original_source/bvm/engine.rs's throw_* family does.
type RuntimeError struct {
	Func string
	Msg  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime exception in function '%s': %s", e.Func, e.Msg)
}

func fatalf(f *frame, format string, args ...any) *RuntimeError {
	return &RuntimeError{Func: f.name, Msg: fmt.Sprintf(format, args...)}
}

// Engine runs a compiled Program to completion. It holds no state beyond
// one run: construct a fresh Engine per Run call.
type Engine struct {
	pool      value.Pool
	functions map[string]*value.DefinedFn
	natives   map[string]value.NativeFn

	frame  *frame
	frames []*frame
	halted bool
}

// New bootstraps an Engine against prog and the given native registry.
func New(prog *value.Program, natives map[string]value.NativeFn) *Engine {
	return &Engine{pool: prog.Pool, functions: prog.Functions, natives: natives}
}

// Run executes starting from main and returns once the frame stack empties
// under a Return (normal completion) or a fatal condition is hit.
func (e *Engine) Run() error {
	main, ok := e.functions["main"]
	if !ok {
		return &RuntimeError{Func: "<bootstrap>", Msg: "call to undefined function 'main'"}
	}
	e.frame = newFrame("main", main.Code, main.MaxLocals)

	for !e.halted {
		if err := e.step(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) step() error {
	f := e.frame
	if f.pc < 0 || f.pc >= len(f.code) {
		return fatalf(f, "fetch past end of code")
	}
	op := bytecode.Opcode(f.code[f.pc])
	def, err := bytecode.Lookup(byte(op))
	if err != nil {
		return fatalf(f, "%s", err)
	}
	operands, width := bytecode.ReadOperands(def, f.code[f.pc+1:])
	f.pc += 1 + width

	switch op {
	case bytecode.Nop:
		return nil
	case bytecode.Push:
		f.push(value.Int32(int32(operands[0])))
		return nil
	case bytecode.Ldc:
		return e.execLdc(f, operands[0])
	case bytecode.LLoad:
		return e.execLLoad(f, operands[0])
	case bytecode.LStore:
		return e.execLStore(f, operands[0])
	case bytecode.IAdd:
		return e.execBinaryInt(f, func(lhs, rhs int32) int32 { return lhs + rhs })
	case bytecode.ISub:
		return e.execBinaryInt(f, func(lhs, rhs int32) int32 { return lhs - rhs })
	case bytecode.ICmpGT:
		return e.execCmpGT(f)
	case bytecode.Jump:
		f.pc = operands[0]
		return nil
	case bytecode.JumpIfFalse:
		return e.execJumpIfFalse(f, operands[0])
	case bytecode.Invoke:
		return e.execInvoke(f, operands[0])
	case bytecode.Return:
		return e.execReturn()
	case bytecode.IReturn:
		return e.execIReturn(f)
	default:
		return fatalf(f, "unhandled opcode %d", op)
	}
}

func (e *Engine) execLdc(f *frame, idx int) error {
	v, ok := e.pool.Get(idx)
	if !ok {
		return fatalf(f, "pool index %d out of range", idx)
	}
	f.push(v)
	return nil
}

func (e *Engine) execLLoad(f *frame, idx int) error {
	if idx < 0 || idx >= len(f.locals) {
		return fatalf(f, "locals index %d out of range", idx)
	}
	f.push(f.locals[idx])
	return nil
}

func (e *Engine) execLStore(f *frame, idx int) error {
	v, ok := f.pop()
	if !ok {
		return fatalf(f, "operand stack underflow")
	}
	if idx < 0 || idx >= len(f.locals) {
		return fatalf(f, "locals index %d out of range", idx)
	}
	f.locals[idx] = v
	return nil
}

func (e *Engine) execBinaryInt(f *frame, op func(lhs, rhs int32) int32) error {
	rhs, ok := f.pop()
	if !ok {
		return fatalf(f, "operand stack underflow")
	}
	lhs, ok := f.pop()
	if !ok {
		return fatalf(f, "operand stack underflow")
	}
	if lhs.Kind != value.IntKind || rhs.Kind != value.IntKind {
		return fatalf(f, "non-Integer operand to an arithmetic opcode")
	}
	f.push(value.Int32(op(lhs.Int, rhs.Int)))
	return nil
}

func (e *Engine) execCmpGT(f *frame) error {
	rhs, ok := f.pop()
	if !ok {
		return fatalf(f, "operand stack underflow")
	}
	lhs, ok := f.pop()
	if !ok {
		return fatalf(f, "operand stack underflow")
	}
	if lhs.Kind != value.IntKind || rhs.Kind != value.IntKind {
		return fatalf(f, "non-Integer operand to ICmpGT")
	}
	f.push(value.Bool(lhs.Int > rhs.Int))
	return nil
}

func (e *Engine) execJumpIfFalse(f *frame, target int) error {
	cond, ok := f.pop()
	if !ok {
		return fatalf(f, "operand stack underflow")
	}
	if cond.Kind != value.BoolKind {
		return fatalf(f, "non-Boolean operand to JumpIfFalse")
	}
	if !cond.Bool {
		f.pc = target
	}
	return nil
}

// execInvoke resolves name (interned as a pool string constant) against
// the native registry first, then the user-function table, per spec.md
// §4.3's argument-passing invariant: the top of the operand stack is the
// last-evaluated (highest-indexed) positional argument.
func (e *Engine) execInvoke(f *frame, poolIdx int) error {
	nameVal, ok := e.pool.Get(poolIdx)
	if !ok || nameVal.Kind != value.StrKind {
		return fatalf(f, "pool index %d is not a callee name", poolIdx)
	}
	name := nameVal.Str

	if native, ok := e.natives[name]; ok {
		args := make([]value.Value, native.Prototype.Arity)
		for i := native.Prototype.Arity - 1; i >= 0; i-- {
			v, ok := f.pop()
			if !ok {
				return fatalf(f, "operand stack underflow calling '%s'", name)
			}
			args[i] = v
		}
		result, ok := native.Impl(args)
		if !ok {
			return fatalf(f, "native function '%s' failed", name)
		}
		if native.Prototype.ReturnType != types.Void {
			f.push(result)
		}
		return nil
	}

	callee, ok := e.functions[name]
	if !ok {
		return fatalf(f, "call to undefined function '%s'", name)
	}
	next := newFrame(name, callee.Code, callee.MaxLocals)
	for i := callee.Arity - 1; i >= 0; i-- {
		v, ok := f.pop()
		if !ok {
			return fatalf(f, "operand stack underflow calling '%s'", name)
		}
		next.locals[i] = v
	}
	e.frames = append(e.frames, f)
	e.frame = next
	return nil
}

func (e *Engine) execReturn() error {
	if len(e.frames) == 0 {
		e.halted = true
		return nil
	}
	e.frame = e.frames[len(e.frames)-1]
	e.frames = e.frames[:len(e.frames)-1]
	return nil
}

func (e *Engine) execIReturn(f *frame) error {
	v, ok := f.pop()
	if !ok {
		return fatalf(f, "operand stack underflow on return")
	}
	if len(e.frames) == 0 {
		return fatalf(f, "IReturn with an empty frame stack")
	}
	e.frame = e.frames[len(e.frames)-1]
	e.frames = e.frames[:len(e.frames)-1]
	e.frame.push(v)
	return nil
}
