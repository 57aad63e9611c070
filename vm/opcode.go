package vm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	REGISTER_COUNT = 4 // General purpose registers r0-r3
	TUNABLE_SLOTS  = 3 // Tunable slots readable by slider_1..slider_3
)

// Op is an opcode name, as used by the catalog and permission sets.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_MOV    = Op(0)  // mov
	OP_LOAD   = Op(1)  // load
	OP_LEN    = Op(2)  // len
	OP_ADD    = Op(3)  // add
	OP_SUB    = Op(4)  // sub
	OP_CMP    = Op(5)  // cmp
	OP_JGT    = Op(6)  // jgt
	OP_JLT    = Op(7)  // jlt
	OP_JEQ    = Op(8)  // jeq
	OP_JMP    = Op(9)  // jmp
	OP_SLIDER = Op(10) // slider
	OP_RET    = Op(11) // ret

	OP_COUNT = 12
)

// Ops returns every opcode in catalog order.
func Ops() (ops []Op) {
	for op := range Op(OP_COUNT) {
		ops = append(ops, op)
	}
	return
}

// opMap maps lower-case mnemonics to opcodes.
var opMap = map[string]Op{
	"mov":    OP_MOV,
	"load":   OP_LOAD,
	"len":    OP_LEN,
	"add":    OP_ADD,
	"sub":    OP_SUB,
	"cmp":    OP_CMP,
	"jgt":    OP_JGT,
	"jlt":    OP_JLT,
	"jeq":    OP_JEQ,
	"jmp":    OP_JMP,
	"slider": OP_SLIDER,
	"ret":    OP_RET,
}

// ParseOp returns the opcode for a catalog name, ignoring case.
func ParseOp(name string) (op Op, ok bool) {
	op, ok = opMap[strings.ToLower(name)]
	return
}

// lookupMnemonic decodes a case-normalized mnemonic. The slider family
// also accepts slider_N for tunable slot N (1-based); plain slider reads
// slot 1.
func lookupMnemonic(word string, slots int) (op Op, slot int, ok bool) {
	op, ok = opMap[word]
	if ok {
		return
	}

	rest, found := strings.CutPrefix(word, "slider_")
	if !found {
		return
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > slots || rest[0] == '0' {
		return
	}

	return OP_SLIDER, n - 1, true
}

// Register is a general purpose register index.
type Register int

const (
	REG_R0 = Register(0)
	REG_R1 = Register(1)
	REG_R2 = Register(2)
	REG_R3 = Register(3)
)

var regMap = map[string]Register{
	"r0": REG_R0,
	"r1": REG_R1,
	"r2": REG_R2,
	"r3": REG_R3,
}

func (reg Register) String() string {
	return fmt.Sprintf("r%d", int(reg))
}

// OperandKind is the kind of operand an instruction slot accepts.
type OperandKind int

const (
	KIND_REGISTER = OperandKind(0) // register
	KIND_SOURCE   = OperandKind(1) // register or #immediate
	KIND_LABEL    = OperandKind(2) // label
)

func (kind OperandKind) String() string {
	switch kind {
	case KIND_REGISTER:
		return "register"
	case KIND_SOURCE:
		return "register or #immediate"
	case KIND_LABEL:
		return "label"
	}
	return fmt.Sprintf("OperandKind(%d)", int(kind))
}

// Source is a register reference or an immediate value, never both.
type Source struct {
	Immediate bool
	Register  Register
	Value     int64
}

// Reg makes a register source.
func Reg(reg Register) Source {
	return Source{Register: reg}
}

// Imm makes an immediate source.
func Imm(value int64) Source {
	return Source{Immediate: true, Value: value}
}

func (src Source) resolve(regs *[REGISTER_COUNT]int64) int64 {
	if src.Immediate {
		return src.Value
	}
	return regs[src.Register]
}

func (src Source) String() string {
	if src.Immediate {
		return fmt.Sprintf("#%d", src.Value)
	}
	return src.Register.String()
}

var (
	reImmediate = regexp.MustCompile(`^#-?[0-9]+$`)
	reLabel     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// parseRegister parses a register operand.
func parseRegister(word string) (reg Register, ok bool) {
	reg, ok = regMap[word]
	return
}

// parseSource parses a register-or-immediate operand.
func parseSource(word string) (src Source, err error) {
	reg, ok := regMap[word]
	if ok {
		src = Reg(reg)
		return
	}

	if !reImmediate.MatchString(word) {
		err = errNotSource
		return
	}

	value, perr := strconv.ParseInt(word[1:], 10, 64)
	if perr != nil {
		err = ErrImmediateRange(word)
		return
	}

	src = Imm(value)
	return
}

// Cond is the flag tested by a jump.
type Cond int

const (
	COND_ALWAYS  = Cond(0)
	COND_GREATER = Cond(1)
	COND_LESS    = Cond(2)
	COND_EQUAL   = Cond(3)
)

// Position is the 1-based source line an instruction came from.
type Position struct {
	LineNo int
}

func (pos Position) Line() int {
	return pos.LineNo
}

// Instruction is a decoded, label-resolved instruction.
type Instruction interface {
	Op() Op
	Line() int
	String() string
}

// Move sets Dst to Src.
type Move struct {
	Position
	Dst Register
	Src Source
}

// Load sets Dst to the input element at Index, or 0 when out of range.
type Load struct {
	Position
	Dst   Register
	Index Source
}

// Length sets Dst to the input length.
type Length struct {
	Position
	Dst Register
}

// Add adds Src to Dst.
type Add struct {
	Position
	Dst Register
	Src Source
}

// Sub subtracts Src from Dst.
type Sub struct {
	Position
	Dst Register
	Src Source
}

// Compare sets the flags from Left against Src.
type Compare struct {
	Position
	Left Register
	Src  Source
}

// Jump transfers control to Target when Cond holds.
type Jump struct {
	Position
	Cond   Cond
	Label  string
	Target int
}

// Tunable sets Dst to the tunable value at Slot (0-based), or 0 when absent.
type Tunable struct {
	Position
	Dst  Register
	Slot int
}

// Return ends execution with the value of Src.
type Return struct {
	Position
	Src Register
}

func (Move) Op() Op    { return OP_MOV }
func (Load) Op() Op    { return OP_LOAD }
func (Length) Op() Op  { return OP_LEN }
func (Add) Op() Op     { return OP_ADD }
func (Sub) Op() Op     { return OP_SUB }
func (Compare) Op() Op { return OP_CMP }
func (Tunable) Op() Op { return OP_SLIDER }
func (Return) Op() Op  { return OP_RET }

func (ins Jump) Op() Op {
	switch ins.Cond {
	case COND_GREATER:
		return OP_JGT
	case COND_LESS:
		return OP_JLT
	case COND_EQUAL:
		return OP_JEQ
	}
	return OP_JMP
}

func (ins Move) String() string    { return fmt.Sprintf("mov %v, %v", ins.Dst, ins.Src) }
func (ins Load) String() string    { return fmt.Sprintf("load %v, %v", ins.Dst, ins.Index) }
func (ins Length) String() string  { return fmt.Sprintf("len %v", ins.Dst) }
func (ins Add) String() string     { return fmt.Sprintf("add %v, %v", ins.Dst, ins.Src) }
func (ins Sub) String() string     { return fmt.Sprintf("sub %v, %v", ins.Dst, ins.Src) }
func (ins Compare) String() string { return fmt.Sprintf("cmp %v, %v", ins.Left, ins.Src) }
func (ins Jump) String() string    { return fmt.Sprintf("%v %v", ins.Op(), ins.Label) }
func (ins Tunable) String() string { return fmt.Sprintf("slider_%d %v", ins.Slot+1, ins.Dst) }
func (ins Return) String() string  { return fmt.Sprintf("ret %v", ins.Src) }
