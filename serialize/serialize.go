// Package serialize is an opaque, lossless binary round-trip for a
// compiled value.Program: Encode writes it, Decode reads it back.
//
// Binary layout, grounded on kristofer-smog's pkg/bytecode/format.go
// magic+version+length-prefixed-section layout, re-typed to this
// spec's Pool/DefinedFn/Opcode shapes:
//
//	[Header]
//	  Magic (4 bytes):   "BUGC"
//	  Version (1 byte):  1
//
//	[Pool section]
//	  Count (4 bytes)
//	  For each entry: Kind (1 byte) + type-specific data
//	    Integer: 4 bytes, big-endian int32
//	    String:  4-byte length + UTF-8 bytes
//	    Boolean: 1 byte (0 or 1)
//
//	[Function section]
//	  Count (4 bytes)
//	  For each function:
//	    Name (4-byte length + UTF-8 bytes)
//	    Arity (1 byte)
//	    MaxLocals (4 bytes)
//	    Code length (4 bytes) + raw instruction bytes
package serialize

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/edilson258/bug/bytecode"
	"github.com/edilson258/bug/value"
)

const (
	magic   = "BUGC"
	version = 1
)

// Encode writes prog to w in bug's binary program format.
func Encode(prog *value.Program, w io.Writer) error {
	if err := writeHeader(w); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := writePool(w, prog.Pool); err != nil {
		return fmt.Errorf("write pool: %w", err)
	}
	if err := writeFunctions(w, prog.Functions); err != nil {
		return fmt.Errorf("write functions: %w", err)
	}
	return nil
}

// Decode reads a value.Program previously written by Encode.
func Decode(r io.Reader) (*value.Program, error) {
	if err := readHeader(r); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	pool, err := readPool(r)
	if err != nil {
		return nil, fmt.Errorf("read pool: %w", err)
	}
	functions, err := readFunctions(r)
	if err != nil {
		return nil, fmt.Errorf("read functions: %w", err)
	}
	return &value.Program{Pool: pool, Functions: functions}, nil
}

func writeHeader(w io.Writer) error {
	if _, err := w.Write([]byte(magic)); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, uint8(version))
}

func readHeader(r io.Reader) error {
	buf := make([]byte, len(magic))
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	if string(buf) != magic {
		return fmt.Errorf("bad magic %q, want %q", buf, magic)
	}
	var v uint8
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return err
	}
	if v != version {
		return fmt.Errorf("unsupported format version %d, want %d", v, version)
	}
	return nil
}

const (
	kindInt  byte = 1
	kindStr  byte = 2
	kindBool byte = 3
)

func writePool(w io.Writer, pool value.Pool) error {
	values := pool.Values()
	if err := binary.Write(w, binary.BigEndian, uint32(len(values))); err != nil {
		return err
	}
	for i, v := range values {
		if err := writeValue(w, v); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

func writeValue(w io.Writer, v value.Value) error {
	switch v.Kind {
	case value.IntKind:
		if err := binary.Write(w, binary.BigEndian, kindInt); err != nil {
			return err
		}
		return binary.Write(w, binary.BigEndian, v.Int)
	case value.StrKind:
		if err := binary.Write(w, binary.BigEndian, kindStr); err != nil {
			return err
		}
		return writeString(w, v.Str)
	case value.BoolKind:
		if err := binary.Write(w, binary.BigEndian, kindBool); err != nil {
			return err
		}
		var b byte
		if v.Bool {
			b = 1
		}
		return binary.Write(w, binary.BigEndian, b)
	default:
		return fmt.Errorf("unsupported value kind %d", v.Kind)
	}
}

func readPool(r io.Reader) (value.Pool, error) {
	var pool value.Pool
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return pool, err
	}
	for i := uint32(0); i < count; i++ {
		v, err := readValue(r)
		if err != nil {
			return pool, fmt.Errorf("entry %d: %w", i, err)
		}
		pool.Add(v)
	}
	return pool, nil
}

func readValue(r io.Reader) (value.Value, error) {
	var kind byte
	if err := binary.Read(r, binary.BigEndian, &kind); err != nil {
		return value.Value{}, err
	}
	switch kind {
	case kindInt:
		var n int32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return value.Value{}, err
		}
		return value.Int32(n), nil
	case kindStr:
		s, err := readString(r)
		if err != nil {
			return value.Value{}, err
		}
		return value.Str(s), nil
	case kindBool:
		var b byte
		if err := binary.Read(r, binary.BigEndian, &b); err != nil {
			return value.Value{}, err
		}
		return value.Bool(b != 0), nil
	default:
		return value.Value{}, fmt.Errorf("unknown value kind 0x%02x", kind)
	}
}

func writeFunctions(w io.Writer, funcs map[string]*value.DefinedFn) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(funcs))); err != nil {
		return err
	}
	for name, fn := range funcs {
		if err := writeString(w, name); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, uint8(fn.Arity)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, uint32(fn.MaxLocals)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, uint32(len(fn.Code))); err != nil {
			return err
		}
		if _, err := w.Write(fn.Code); err != nil {
			return err
		}
	}
	return nil
}

func readFunctions(r io.Reader) (map[string]*value.DefinedFn, error) {
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	funcs := make(map[string]*value.DefinedFn, count)
	for i := uint32(0); i < count; i++ {
		name, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("function %d name: %w", i, err)
		}
		var arity uint8
		if err := binary.Read(r, binary.BigEndian, &arity); err != nil {
			return nil, fmt.Errorf("function %q arity: %w", name, err)
		}
		var maxLocals uint32
		if err := binary.Read(r, binary.BigEndian, &maxLocals); err != nil {
			return nil, fmt.Errorf("function %q max_locals: %w", name, err)
		}
		var codeLen uint32
		if err := binary.Read(r, binary.BigEndian, &codeLen); err != nil {
			return nil, fmt.Errorf("function %q code length: %w", name, err)
		}
		code := make(bytecode.Instructions, codeLen)
		if _, err := io.ReadFull(r, code); err != nil {
			return nil, fmt.Errorf("function %q code: %w", name, err)
		}
		funcs[name] = &value.DefinedFn{Arity: int(arity), MaxLocals: int(maxLocals), Code: code}
	}
	return funcs, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r io.Reader) (string, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
