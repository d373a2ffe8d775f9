package engine

import "errors"

// The following sentinel errors identify the fatal conditions the engine
// itself detects (spec.md §7's taxonomy). Memory faults raised during
// SLOAD, SSTORE, UNMAP and LOADP are returned as the memory package's own
// sentinel errors. cmd/um maps ErrHalt to a clean exit and everything else
// to a non-zero exit.
var (
	// ErrHalt is returned by Step when the program executes HALT. It is
	// the one sentinel that does not indicate failure.
	ErrHalt = errors.New("engine: halted")

	// ErrProgramCounterOverrun indicates the program counter ran off the
	// end of segment 0 without an explicit HALT. A well-formed UM
	// program never does this; per spec.md's Open Question this repo
	// treats it as fatal rather than a silent clean exit.
	ErrProgramCounterOverrun = errors.New("engine: program counter ran past end of segment 0")

	// ErrInvalidOpcode indicates a decoded opcode >= NumOpcodes.
	ErrInvalidOpcode = errors.New("engine: invalid opcode")

	// ErrDivideByZero indicates a DIV instruction with a zero divisor.
	ErrDivideByZero = errors.New("engine: division by zero")

	// ErrOutputRange indicates an OUT instruction whose register held a
	// value >= 256.
	ErrOutputRange = errors.New("engine: output value out of range")

	// ErrIO wraps a failure writing to the output stream or reading from
	// the input stream (other than a clean EOF, which is not an error).
	ErrIO = errors.New("engine: i/o failure")
)
