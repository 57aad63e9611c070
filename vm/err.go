package vm

import (
	"errors"

	"github.com/ezrec/carrera/translate"
)

var f = translate.From

var (
	// Runtime failures
	ErrCycleLimit = errors.New(f("cycle limit exceeded (infinite loop?)"))
	ErrNoReturn   = errors.New(f("program ended without returning"))
)

// errNotSource is mapped to an ErrOperand by the assembler.
var errNotSource = errors.New("not a source")

type ErrLabelDuplicate string

func (err ErrLabelDuplicate) Error() string {
	return f("duplicate label %q", string(err))
}

type ErrLabelMissing string

func (err ErrLabelMissing) Error() string {
	return f("undefined label %q", string(err))
}

type ErrInstructionUnknown string

func (err ErrInstructionUnknown) Error() string {
	return f("unknown instruction %q", string(err))
}

type ErrImmediateRange string

func (err ErrImmediateRange) Error() string {
	return f("immediate %v out of range", string(err))
}

// ErrOperand reports an operand slot (1-based) of the wrong kind, or a
// missing operand when Got is empty.
type ErrOperand struct {
	Op   Op
	Slot int
	Want OperandKind
	Got  string
}

func (err *ErrOperand) Error() string {
	if len(err.Got) == 0 {
		return f("%v operand %d: expected %v", err.Op, err.Slot, err.Want)
	}
	return f("%v operand %d: expected %v, got %q", err.Op, err.Slot, err.Want, err.Got)
}

// ErrOperandCount reports excess operands.
type ErrOperandCount struct {
	Op   Op
	Want int
	Got  int
}

func (err *ErrOperandCount) Error() string {
	return f("%v: expected %d operands, got %d", err.Op, err.Want, err.Got)
}

// ErrSyntax locates an assembly diagnostic in the source text.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d: %v", err.LineNo, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrAssembly collects every diagnostic of a failed assembly.
type ErrAssembly struct {
	Diagnostics []error
}

func (err *ErrAssembly) Error() string {
	switch len(err.Diagnostics) {
	case 0:
		return f("assembly failed")
	case 1:
		return err.Diagnostics[0].Error()
	default:
		return f("%v (and %d more)", err.Diagnostics[0], len(err.Diagnostics)-1)
	}
}

func (err *ErrAssembly) Unwrap() []error {
	return err.Diagnostics
}

type ErrNotPermitted Op

func (err ErrNotPermitted) Error() string {
	return f("%v not permitted", Op(err))
}
