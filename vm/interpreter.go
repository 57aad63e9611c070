// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package vm

import (
	"fmt"
	"log"
)

const (
	CYCLE_LIMIT = 10000 // Hard ceiling of cycles per execution.
)

// Coster reports the cycle cost of an opcode.
type Coster interface {
	Cycles(op Op) int
}

// Permitter reports whether an opcode may be executed.
type Permitter interface {
	Permits(op Op) bool
}

// Flags are the comparison flags, set only by cmp.
type Flags struct {
	Greater bool
	Equal   bool
	Less    bool
}

// Machine is the state of a single execution.
type Machine struct {
	Register [REGISTER_COUNT]int64 // Register bank.
	Flags    Flags                 // Last comparison.
	Pc       int                   // Index of the next instruction.
	Cycles   int                   // Cycles charged so far.
}

// String returns the machine state as a string.
func (mach *Machine) String() (text string) {
	text += fmt.Sprintf("   pc: %d\n", mach.Pc)
	text += fmt.Sprintf("cycle: %d\n", mach.Cycles)
	for n, val := range mach.Register {
		text += fmt.Sprintf("   r%d: %d\n", n, val)
	}

	flags := ""
	for _, flag := range []struct {
		set  bool
		name string
	}{
		{mach.Flags.Greater, "gt"},
		{mach.Flags.Equal, "eq"},
		{mach.Flags.Less, "lt"},
	} {
		if flag.set {
			flags += " " + flag.name
		}
	}
	text += fmt.Sprintf("flags:%v\n", flags)

	return
}

// Step applies the effect of ins. When ins is a return, done is set and
// value holds the result.
func (mach *Machine) Step(ins Instruction, input []int64, tunables []int64) (value int64, done bool) {
	regs := &mach.Register
	next := mach.Pc + 1

	switch ins := ins.(type) {
	case Move:
		regs[ins.Dst] = ins.Src.resolve(regs)
	case Load:
		index := ins.Index.resolve(regs)
		if index >= 0 && index < int64(len(input)) {
			regs[ins.Dst] = input[index]
		} else {
			regs[ins.Dst] = 0
		}
	case Length:
		regs[ins.Dst] = int64(len(input))
	case Add:
		regs[ins.Dst] += ins.Src.resolve(regs)
	case Sub:
		regs[ins.Dst] -= ins.Src.resolve(regs)
	case Compare:
		a := regs[ins.Left]
		b := ins.Src.resolve(regs)
		mach.Flags = Flags{Greater: a > b, Equal: a == b, Less: a < b}
	case Jump:
		var taken bool
		switch ins.Cond {
		case COND_ALWAYS:
			taken = true
		case COND_GREATER:
			taken = mach.Flags.Greater
		case COND_LESS:
			taken = mach.Flags.Less
		case COND_EQUAL:
			taken = mach.Flags.Equal
		}
		if taken {
			next = ins.Target
		}
	case Tunable:
		if ins.Slot >= 0 && ins.Slot < len(tunables) {
			regs[ins.Dst] = tunables[ins.Slot]
		} else {
			regs[ins.Dst] = 0
		}
	case Return:
		return regs[ins.Src], true
	}

	mach.Pc = next

	return
}

// Outcome is the result of an execution: either a returned Value (Err is
// nil) or a failure. Cycles is always the number of cycles consumed.
type Outcome struct {
	Value  int64 // Returned value.
	Cycles int   // Cycles consumed up to termination.
	Err    error // Failure reason, nil on return.
	Pc     int   // Index of the terminating instruction.
	LineNo int   // Source line of the terminating instruction, or 0.
}

// Returned returns true if the program returned a value.
func (out Outcome) Returned() bool {
	return out.Err == nil
}

// Reason returns the failure reason, or the empty string.
func (out Outcome) Reason() string {
	if out.Err == nil {
		return ""
	}
	return out.Err.Error()
}

func (out Outcome) String() string {
	if out.Err != nil {
		return f("failed: %v (%d cycles)", out.Err, out.Cycles)
	}
	return f("returned %d (%d cycles)", out.Value, out.Cycles)
}

// Interpreter executes programs. It holds only read-only configuration, so
// a single Interpreter may execute concurrently on many inputs.
type Interpreter struct {
	Verbose   bool      // If set, logs every step.
	Costs     Coster    // Cycle costs; nil charges 1 cycle per instruction.
	Permitted Permitter // Permitted opcodes; nil permits all.
	Limit     int       // Cycle ceiling; zero means CYCLE_LIMIT.
}

// Execute runs prog with the package defaults for everything but the
// permissions and cycle costs.
func Execute(prog *Program, input []int64, tunables []int64, permitted Permitter, costs Coster) Outcome {
	in := &Interpreter{Costs: costs, Permitted: permitted}
	return in.Execute(prog, input, tunables)
}

func (in *Interpreter) limit() int {
	if in.Limit > 0 {
		return in.Limit
	}
	return CYCLE_LIMIT
}

func (in *Interpreter) cost(op Op) int {
	if in.Costs == nil {
		return 1
	}
	return max(1, in.Costs.Cycles(op))
}

// Execute runs prog against one input array. Neither input nor tunables
// are modified.
func (in *Interpreter) Execute(prog *Program, input []int64, tunables []int64) (out Outcome) {
	mach := &Machine{}
	limit := in.limit()

	defer func() {
		out.Cycles = mach.Cycles
		out.Pc = mach.Pc
		out.LineNo = prog.LineNo(mach.Pc)
		if in.Verbose {
			log.Printf("vm: %v", out)
		}
	}()

	for {
		if mach.Cycles >= limit {
			out.Err = ErrCycleLimit
			return
		}
		if mach.Pc < 0 || mach.Pc >= prog.Len() {
			out.Err = ErrNoReturn
			return
		}

		ins := prog.Instructions[mach.Pc]
		op := ins.Op()
		if in.Permitted != nil && !in.Permitted.Permits(op) {
			out.Err = ErrNotPermitted(op)
			return
		}

		mach.Cycles += in.cost(op)

		if in.Verbose {
			log.Printf("vm: %d: [%d] %v", ins.Line(), mach.Pc, ins)
		}

		value, done := mach.Step(ins, input, tunables)
		if done {
			out.Value = value
			return
		}
	}
}
