// Package catalog describes the carrera opcodes: cycle cost, category and
// documentation, and the permission sets that gate them.
package catalog

import (
	"io"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/ezrec/carrera/vm"
)

// Category groups opcodes for display.
type Category int

const (
	CATEGORY_BASIC   = Category(0) // Basic
	CATEGORY_MEMORY  = Category(1) // Memory
	CATEGORY_ALU     = Category(2) // ALU
	CATEGORY_CONTROL = Category(3) // Control Flow
	CATEGORY_SPECIAL = Category(4) // Special
)

var categoryName = map[Category]string{
	CATEGORY_BASIC:   "basic",
	CATEGORY_MEMORY:  "memory",
	CATEGORY_ALU:     "alu",
	CATEGORY_CONTROL: "control",
	CATEGORY_SPECIAL: "special",
}

var categoryLabel = map[Category]string{
	CATEGORY_BASIC:   "Basic",
	CATEGORY_MEMORY:  "Memory",
	CATEGORY_ALU:     "ALU",
	CATEGORY_CONTROL: "Control Flow",
	CATEGORY_SPECIAL: "Special",
}

func (cat Category) String() string {
	name, ok := categoryName[cat]
	if !ok {
		return f("category(%d)", int(cat))
	}
	return name
}

// Label returns the display label of the category.
func (cat Category) Label() string {
	return f(categoryLabel[cat])
}

// ParseCategory parses a category name.
func ParseCategory(name string) (cat Category, err error) {
	for cat, str := range categoryName {
		if str == name {
			return cat, nil
		}
	}
	err = ErrCategoryUnknown(name)
	return
}

// Entry describes one opcode.
type Entry struct {
	Op          vm.Op
	Cycles      int
	Category    Category
	Description string
	Syntax      string
}

// Catalog maps opcodes to their entries.
type Catalog map[vm.Op]Entry

var _ vm.Coster = Catalog(nil)

var defaultCatalog = Catalog{
	vm.OP_MOV:    {vm.OP_MOV, 1, CATEGORY_BASIC, "Move value to register", "mov rx, src"},
	vm.OP_LOAD:   {vm.OP_LOAD, 2, CATEGORY_MEMORY, "Load array element", "load rx, idx"},
	vm.OP_LEN:    {vm.OP_LEN, 1, CATEGORY_MEMORY, "Get array length", "len rx"},
	vm.OP_ADD:    {vm.OP_ADD, 1, CATEGORY_ALU, "Add to register", "add rx, src"},
	vm.OP_SUB:    {vm.OP_SUB, 1, CATEGORY_ALU, "Subtract from register", "sub rx, src"},
	vm.OP_CMP:    {vm.OP_CMP, 1, CATEGORY_ALU, "Compare two values", "cmp rx, src"},
	vm.OP_JGT:    {vm.OP_JGT, 1, CATEGORY_CONTROL, "Jump if greater", "jgt label"},
	vm.OP_JLT:    {vm.OP_JLT, 1, CATEGORY_CONTROL, "Jump if less", "jlt label"},
	vm.OP_JEQ:    {vm.OP_JEQ, 1, CATEGORY_CONTROL, "Jump if equal", "jeq label"},
	vm.OP_JMP:    {vm.OP_JMP, 1, CATEGORY_CONTROL, "Unconditional jump", "jmp label"},
	vm.OP_SLIDER: {vm.OP_SLIDER, 1, CATEGORY_SPECIAL, "Read slider value", "slider rx"},
	vm.OP_RET:    {vm.OP_RET, 1, CATEGORY_SPECIAL, "Return value from register", "ret rx"},
}

// Default returns a copy of the standard catalog.
func Default() Catalog {
	return maps.Clone(defaultCatalog)
}

// Cycles returns the cycle cost of op; unknown opcodes cost 1.
func (cat Catalog) Cycles(op vm.Op) int {
	entry, ok := cat[op]
	if !ok || entry.Cycles < 1 {
		return 1
	}
	return entry.Cycles
}

// Lookup returns the entry for a catalog name.
func (cat Catalog) Lookup(name string) (entry Entry, ok bool) {
	op, ok := vm.ParseOp(name)
	if !ok {
		return
	}
	entry, ok = cat[op]
	return
}

// Ops returns the catalog opcodes in order.
func (cat Catalog) Ops() []vm.Op {
	return slices.Sorted(maps.Keys(cat))
}

// ByCategory returns the catalog opcodes of a category, in order.
func (cat Catalog) ByCategory(category Category) (ops []vm.Op) {
	for _, op := range cat.Ops() {
		if cat[op].Category == category {
			ops = append(ops, op)
		}
	}
	return
}

// yamlEntry is the on-disk form of an Entry.
type yamlEntry struct {
	Cycles      int    `yaml:"cycles"`
	Category    string `yaml:"category"`
	Description string `yaml:"description,omitempty"`
	Syntax      string `yaml:"syntax,omitempty"`
}

// Load reads a YAML catalog, a mapping of opcode names to entries:
//
//	load:
//	  cycles: 3
//	  category: memory
//
// Opcodes missing from the file keep their default entry.
func Load(input io.Reader) (cat Catalog, err error) {
	var doc map[string]yamlEntry

	err = yaml.NewDecoder(input).Decode(&doc)
	if err == io.EOF {
		err = nil
	}
	if err != nil {
		err = &ErrCatalog{Err: err}
		return
	}

	cat = Default()
	for _, name := range slices.Sorted(maps.Keys(doc)) {
		ye := doc[name]
		op, ok := vm.ParseOp(name)
		if !ok {
			err = &ErrCatalog{Name: name, Err: ErrOpUnknown(name)}
			return
		}
		if ye.Cycles < 1 {
			err = &ErrCatalog{Name: name, Err: ErrCycles(ye.Cycles)}
			return
		}

		entry := cat[op]
		entry.Cycles = ye.Cycles
		if len(ye.Category) != 0 {
			entry.Category, err = ParseCategory(ye.Category)
			if err != nil {
				err = &ErrCatalog{Name: name, Err: err}
				return
			}
		}
		if len(ye.Description) != 0 {
			entry.Description = ye.Description
		}
		if len(ye.Syntax) != 0 {
			entry.Syntax = ye.Syntax
		}
		cat[op] = entry
	}

	return
}
