// Package engine implements the Universal Machine's execution engine: the
// program counter, the fetch/decode/dispatch loop, and the fourteen
// instruction handlers that mutate registers and/or memory.
package engine

import (
	"errors"
	"fmt"
	"io"

	"github.com/arnebjarne/um/internal/memory"
	"github.com/arnebjarne/um/internal/register"
)

// Engine holds everything needed to execute a UM program: the register
// file, the segmented memory (whose segment 0 is the executing image),
// the program counter, and the I/O streams OUT and IN operate on.
//
// An Engine is not safe for concurrent use: per spec.md §5 there is
// exactly one program counter and one register file, and no instruction
// suspends except IN/OUT blocking on their streams.
type Engine struct {
	regs *register.File
	mem  *memory.Memory
	pc   uint32

	in  io.Reader
	out io.Writer
}

// New creates an Engine whose segment 0 is already populated (by the
// loader) and whose program counter starts at 0.
func New(mem *memory.Memory, in io.Reader, out io.Writer) *Engine {
	return &Engine{
		regs: &register.File{},
		mem:  mem,
		in:   in,
		out:  out,
	}
}

// Run executes instructions until HALT, a program-counter overrun, or a
// fatal error. It returns ErrHalt on clean termination and a wrapped
// sentinel error (see errors.go) on any fatal condition.
func (e *Engine) Run() error {
	for {
		if err := e.Step(); err != nil {
			return err
		}
	}
}

// Step fetches, decodes, and executes a single instruction, advancing the
// program counter. It returns ErrHalt when the program halts.
func (e *Engine) Step() error {
	seg0 := e.mem.SegmentZero()
	if e.pc >= uint32(len(seg0)) {
		return fmt.Errorf("%w: pc=%d len=%d", ErrProgramCounterOverrun, e.pc, len(seg0))
	}
	word := seg0[e.pc]
	e.pc++

	instr := decode(word)
	if instr.op >= NumOpcodes {
		return fmt.Errorf("%w: %d", ErrInvalidOpcode, instr.op)
	}
	return e.dispatch(instr)
}

func (e *Engine) dispatch(instr instruction) error {
	switch instr.op {
	case OpCMOV:
		if e.regs.Get(instr.c) != 0 {
			e.regs.Put(instr.a, e.regs.Get(instr.b))
		}
	case OpSLOAD:
		v, err := e.mem.Get(e.regs.Get(instr.b), e.regs.Get(instr.c))
		if err != nil {
			return err
		}
		e.regs.Put(instr.a, v)
	case OpSSTORE:
		if err := e.mem.Put(e.regs.Get(instr.a), e.regs.Get(instr.b), e.regs.Get(instr.c)); err != nil {
			return err
		}
	case OpADD:
		e.regs.Put(instr.a, e.regs.Get(instr.b)+e.regs.Get(instr.c))
	case OpMUL:
		e.regs.Put(instr.a, e.regs.Get(instr.b)*e.regs.Get(instr.c))
	case OpDIV:
		divisor := e.regs.Get(instr.c)
		if divisor == 0 {
			return ErrDivideByZero
		}
		e.regs.Put(instr.a, e.regs.Get(instr.b)/divisor)
	case OpNAND:
		e.regs.Put(instr.a, ^(e.regs.Get(instr.b) & e.regs.Get(instr.c)))
	case OpHALT:
		return ErrHalt
	case OpMAP:
		id := e.mem.Map(e.regs.Get(instr.c))
		e.regs.Put(instr.b, id)
	case OpUNMAP:
		if err := e.mem.Unmap(e.regs.Get(instr.c)); err != nil {
			return err
		}
	case OpOUT:
		if err := e.output(e.regs.Get(instr.c)); err != nil {
			return err
		}
	case OpIN:
		v, err := e.input()
		if err != nil {
			return err
		}
		e.regs.Put(instr.c, v)
	case OpLOADP:
		b := e.regs.Get(instr.b)
		if b != 0 {
			if err := e.mem.DuplicateIntoZero(b); err != nil {
				return err
			}
		}
		e.pc = e.regs.Get(instr.c)
	case OpLV:
		e.regs.Put(instr.a, instr.value)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidOpcode, instr.op)
	}
	return nil
}

// output writes the low 8 bits of v to the output stream. v must be < 256.
func (e *Engine) output(v uint32) error {
	if v >= 256 {
		return fmt.Errorf("%w: %d", ErrOutputRange, v)
	}
	if _, err := e.out.Write([]byte{byte(v)}); err != nil {
		return fmt.Errorf("%w: %s", ErrIO, err)
	}
	return nil
}

// input reads one byte from the input stream, returning the sentinel
// 0xFFFFFFFF on EOF. Unlike the original C implementation this returns
// immediately once the sentinel is determined, rather than falling
// through to overwrite it with the raw (invalid) byte.
func (e *Engine) input() (uint32, error) {
	var buf [1]byte
	n, err := e.in.Read(buf[:])
	if n == 1 {
		return uint32(buf[0]), nil
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0xFFFFFFFF, nil
		}
		return 0, fmt.Errorf("%w: %s", ErrIO, err)
	}
	return 0xFFFFFFFF, nil
}
