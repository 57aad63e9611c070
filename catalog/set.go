package catalog

import (
	"slices"
	"strings"

	"github.com/ezrec/carrera/vm"
)

// Set is a permission set of opcodes.
type Set map[vm.Op]bool

var _ vm.Permitter = Set(nil)

// NewSet makes a set of the given opcodes.
func NewSet(ops ...vm.Op) Set {
	set := make(Set, len(ops))
	for _, op := range ops {
		set[op] = true
	}
	return set
}

// All returns a set permitting every opcode.
func All() Set {
	return NewSet(vm.Ops()...)
}

// ParseSet parses a comma or space separated list of opcode names.
// The name "all" permits every opcode.
func ParseSet(list string) (set Set, err error) {
	set = Set{}
	for _, name := range strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == ' ' }) {
		if strings.EqualFold(name, "all") {
			set.Add(vm.Ops()...)
			continue
		}
		op, ok := vm.ParseOp(name)
		if !ok {
			err = ErrOpUnknown(name)
			return
		}
		set.Add(op)
	}
	return
}

// Permits returns true if op is in the set.
func (set Set) Permits(op vm.Op) bool {
	return set[op]
}

// Add adds opcodes to the set.
func (set Set) Add(ops ...vm.Op) {
	for _, op := range ops {
		set[op] = true
	}
}

// Ops returns the opcodes in the set, in order.
func (set Set) Ops() []vm.Op {
	var ops []vm.Op
	for op, ok := range set {
		if ok {
			ops = append(ops, op)
		}
	}
	slices.Sort(ops)
	return ops
}

// Missing returns the opcodes of used that the set does not permit.
func (set Set) Missing(used []vm.Op) (missing []vm.Op) {
	for _, op := range used {
		if !set.Permits(op) {
			missing = append(missing, op)
		}
	}
	return
}

func (set Set) String() string {
	var names []string
	for _, op := range set.Ops() {
		names = append(names, op.String())
	}
	return strings.Join(names, ",")
}
