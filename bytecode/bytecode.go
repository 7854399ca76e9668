// Package bytecode defines bug's instruction set: opcode constants, their
// operand encoding, and a decoder/disassembler shared by the code
// generator, the execution engine, and the serializer.
//
// Grounded on teacher code/code.go's Definition/Make/ReadOperands
// machinery, re-keyed to the opcode set spec.md §4.3 names: Nop, Push,
// Ldc, LLoad, LStore, IAdd, ICmpGT, Jump, JumpIfFalse, Invoke, Return,
// IReturn. ISub is a supplement: spec.md's checker defines '-' on
// Integer (§4.1's operator table) but §4.3's opcode table omits a
// subtraction opcode, and original_source/bugc/codegenerator.rs's
// emit_binary_minus is itself an unimplemented `todo!()` — ISub completes
// that gap by the same shape as IAdd.
package bytecode

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Instructions is a flat encoded instruction stream.
type Instructions []byte

// Opcode identifies a single bytecode instruction.
type Opcode byte

const (
	// Nop has no effect. The code generator does not emit it: its jump
	// placeholder is a JumpIfFalse with a zero operand, patched in place.
	Nop Opcode = iota

	// Push pushes an immediate Integer operand onto the operand stack.
	// Operands: [value:4] (int32, big-endian).
	Push

	// Ldc pushes a clone of pool[index] onto the operand stack.
	// Operands: [index:2].
	Ldc

	// LLoad pushes a clone of locals[index] onto the operand stack.
	// Operands: [index:1].
	LLoad

	// LStore pops a value and assigns it to locals[index].
	// Operands: [index:1].
	LStore

	// IAdd pops two Integers (top is rhs) and pushes lhs+rhs, wrapping on
	// int32 overflow.
	IAdd

	// ISub pops two Integers (top is rhs) and pushes lhs-rhs, wrapping on
	// int32 overflow.
	ISub

	// ICmpGT pops two Integers and pushes Boolean(lhs > rhs).
	ICmpGT

	// Jump sets the program counter to the given absolute offset.
	// Operands: [offset:2].
	Jump

	// JumpIfFalse pops a Boolean; if false, sets the program counter to
	// the given absolute offset.
	// Operands: [offset:2].
	JumpIfFalse

	// Invoke calls the named function: native or user-defined, resolved
	// at run time by the engine's function tables. The name is interned
	// as a String constant in the same pool Ldc reads, so Invoke needs no
	// pool of its own.
	// Operands: [poolIndex:2] - index of the callee's name in the pool.
	Invoke

	// Return returns from the current function with no value.
	Return

	// IReturn pops one value and returns it as the current function's
	// result.
	IReturn
)

// Definition names an opcode and the byte width of each of its operands.
type Definition struct {
	Name          string
	OperandWidths []int
}

var definitions = map[Opcode]*Definition{
	Nop:         {"Nop", []int{}},
	Push:        {"Push", []int{4}},
	Ldc:         {"Ldc", []int{2}},
	LLoad:       {"LLoad", []int{1}},
	LStore:      {"LStore", []int{1}},
	IAdd:        {"IAdd", []int{}},
	ISub:        {"ISub", []int{}},
	ICmpGT:      {"ICmpGT", []int{}},
	Jump:        {"Jump", []int{2}},
	JumpIfFalse: {"JumpIfFalse", []int{2}},
	Invoke:      {"Invoke", []int{2}},
	Return:      {"Return", []int{}},
	IReturn:     {"IReturn", []int{}},
}

// Lookup returns the Definition for a raw opcode byte.
func Lookup(op byte) (*Definition, error) {
	def, ok := definitions[Opcode(op)]
	if !ok {
		return nil, fmt.Errorf("opcode %d undefined", op)
	}
	return def, nil
}

// Make encodes an instruction from an opcode and its operands.
func Make(op Opcode, operands ...int) []byte {
	def, ok := definitions[op]
	if !ok {
		return []byte{}
	}
	length := 1
	for _, w := range def.OperandWidths {
		length += w
	}
	instruction := make([]byte, length)
	instruction[0] = byte(op)

	offset := 1
	for i, operand := range operands {
		width := def.OperandWidths[i]
		switch width {
		case 1:
			instruction[offset] = byte(operand)
		case 2:
			binary.BigEndian.PutUint16(instruction[offset:], uint16(operand))
		case 4:
			binary.BigEndian.PutUint32(instruction[offset:], uint32(int32(operand)))
		}
		offset += width
	}
	return instruction
}

// ReadOperands decodes the operands of one instruction (excluding its
// opcode byte) and reports how many bytes were consumed.
func ReadOperands(def *Definition, ins Instructions) ([]int, int) {
	operands := make([]int, len(def.OperandWidths))
	offset := 0
	for i, width := range def.OperandWidths {
		switch width {
		case 1:
			operands[i] = int(ReadUint8(ins[offset:]))
		case 2:
			operands[i] = int(ReadUint16(ins[offset:]))
		case 4:
			operands[i] = int(int32(ReadUint32(ins[offset:])))
		}
		offset += width
	}
	return operands, offset
}

// ReadUint8 reads the first byte of ins.
func ReadUint8(ins Instructions) uint8 { return ins[0] }

// ReadUint16 reads the first two bytes of ins, big-endian.
func ReadUint16(ins Instructions) uint16 { return binary.BigEndian.Uint16(ins) }

// ReadUint32 reads the first four bytes of ins, big-endian.
func ReadUint32(ins Instructions) uint32 { return binary.BigEndian.Uint32(ins) }

// String disassembles ins into one "offset opcode operands" line per
// instruction, the way teacher Instructions.String does.
func (ins Instructions) String() string {
	var out strings.Builder
	i := 0
	for i < len(ins) {
		def, err := Lookup(ins[i])
		if err != nil {
			fmt.Fprintf(&out, "ERROR: %s\n", err)
			i++
			continue
		}
		operands, read := ReadOperands(def, ins[i+1:])
		fmt.Fprintf(&out, "%04d %s\n", i, ins.fmtInstruction(def, operands))
		i += 1 + read
	}
	return out.String()
}

func (ins Instructions) fmtInstruction(def *Definition, operands []int) string {
	if len(operands) != len(def.OperandWidths) {
		return fmt.Sprintf("ERROR: operand len %d does not match defined %d", len(operands), len(def.OperandWidths))
	}
	switch len(operands) {
	case 0:
		return def.Name
	case 1:
		return fmt.Sprintf("%s %d", def.Name, operands[0])
	case 2:
		return fmt.Sprintf("%s %d %d", def.Name, operands[0], operands[1])
	}
	return fmt.Sprintf("ERROR: unhandled operand count for %s", def.Name)
}
