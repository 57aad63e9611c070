package vm

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Program is an assembled, label-resolved instruction list.
// It must not be modified once assembled, so that many interpreter
// invocations may share it.
type Program struct {
	Instructions []Instruction
	Labels       map[string]int // Label name to instruction index.
}

// Len returns the number of instructions.
func (prog *Program) Len() int {
	if prog == nil {
		return 0
	}
	return len(prog.Instructions)
}

// LineNo returns the source line of the instruction at pc, or 0.
func (prog *Program) LineNo(pc int) int {
	if pc < 0 || pc >= prog.Len() {
		return 0
	}
	return prog.Instructions[pc].Line()
}

// Used returns the opcodes the program executes, in catalog order.
func (prog *Program) Used() []Op {
	used := map[Op]bool{}
	for _, ins := range prog.Instructions {
		used[ins.Op()] = true
	}
	return slices.Sorted(maps.Keys(used))
}

// Slots returns the tunable slots the program reads, in ascending order.
func (prog *Program) Slots() []int {
	slots := map[int]bool{}
	for _, ins := range prog.Instructions {
		if tun, ok := ins.(Tunable); ok {
			slots[tun.Slot] = true
		}
	}
	return slices.Sorted(maps.Keys(slots))
}

// String returns a canonical listing of the program, labels included.
func (prog *Program) String() string {
	at := map[int][]string{}
	for label, index := range prog.Labels {
		at[index] = append(at[index], label)
	}

	var text strings.Builder
	for n := 0; n <= prog.Len(); n++ {
		labels := at[n]
		slices.Sort(labels)
		for _, label := range labels {
			fmt.Fprintf(&text, "%v:\n", label)
		}
		if n < prog.Len() {
			fmt.Fprintf(&text, "\t%v\n", prog.Instructions[n])
		}
	}

	return text.String()
}
