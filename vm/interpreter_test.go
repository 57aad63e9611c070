package vm

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testCosts map[Op]int

func (tc testCosts) Cycles(op Op) int {
	cost, ok := tc[op]
	if !ok {
		return 1
	}
	return cost
}

type testPermits map[Op]bool

func (tp testPermits) Permits(op Op) bool {
	return tp[op]
}

func permitsExcept(ops ...Op) testPermits {
	tp := testPermits{}
	for _, op := range Ops() {
		tp[op] = true
	}
	for _, op := range ops {
		delete(tp, op)
	}
	return tp
}

var loadCosts = testCosts{OP_LOAD: 2}

func mustAssemble(t *testing.T, lines ...string) *Program {
	t.Helper()

	as := Assemble(source(lines...))
	if !as.Ok() {
		t.Fatalf("assemble: %v", as.Messages())
	}
	return as.Program
}

func TestExecuteReturn(t *testing.T) {
	assert := assert.New(t)

	prog := mustAssemble(t, "mov r0, #5", "ret r0")

	out := Execute(prog, nil, nil, permitsExcept(), nil)
	assert.True(out.Returned())
	assert.Equal(int64(5), out.Value)
	assert.Equal(2, out.Cycles)
	assert.Equal("", out.Reason())
	assert.Equal(2, out.LineNo)
	assert.Equal("returned 5 (2 cycles)", out.String())
}

func TestExecuteNotPermitted(t *testing.T) {
	assert := assert.New(t)

	prog := mustAssemble(t, "add r0, r1", "ret r0")

	out := Execute(prog, nil, nil, permitsExcept(OP_ADD), nil)
	assert.False(out.Returned())
	assert.Equal("add not permitted", out.Reason())
	assert.Equal(0, out.Cycles)
	assert.Equal(ErrNotPermitted(OP_ADD), out.Err)

	// Cycles are those consumed strictly before the refused instruction.
	prog = mustAssemble(t,
		"mov r0, #1",
		"load r1, #0",
		"add r0, r1",
		"ret r0",
	)
	out = Execute(prog, []int64{7}, nil, permitsExcept(OP_ADD), loadCosts)
	assert.Equal(ErrNotPermitted(OP_ADD), out.Err)
	assert.Equal(3, out.Cycles)
	assert.Equal(2, out.Pc)
	assert.Equal(3, out.LineNo)

	out = Execute(prog, []int64{7}, nil, permitsExcept(), loadCosts)
	assert.True(out.Returned())
	assert.Equal(int64(8), out.Value)
	assert.Equal(5, out.Cycles)
}

func TestExecuteNilPermits(t *testing.T) {
	assert := assert.New(t)

	prog := mustAssemble(t, "len r0", "ret r0")

	out := Execute(prog, []int64{1, 2, 3}, nil, nil, nil)
	assert.True(out.Returned())
	assert.Equal(int64(3), out.Value)

	out = Execute(prog, []int64{1, 2, 3}, nil, testPermits{}, nil)
	assert.Equal("len not permitted", out.Reason())
}

func TestExecuteCycleLimit(t *testing.T) {
	assert := assert.New(t)

	prog := mustAssemble(t, "loop: jmp loop")

	out := Execute(prog, nil, nil, nil, nil)
	assert.ErrorIs(out.Err, ErrCycleLimit)
	assert.Equal(CYCLE_LIMIT, out.Cycles)

	in := &Interpreter{Limit: 50}
	out = in.Execute(prog, nil, nil)
	assert.ErrorIs(out.Err, ErrCycleLimit)
	assert.Equal(50, out.Cycles)
}

func TestExecuteNoReturn(t *testing.T) {
	assert := assert.New(t)

	out := Execute(mustAssemble(t, "mov r0, #1"), nil, nil, nil, nil)
	assert.ErrorIs(out.Err, ErrNoReturn)
	assert.Equal(1, out.Cycles)
	assert.Equal(0, out.LineNo)

	out = Execute(mustAssemble(t), nil, nil, nil, nil)
	assert.ErrorIs(out.Err, ErrNoReturn)
	assert.Equal(0, out.Cycles)

	out = Execute(nil, nil, nil, nil, nil)
	assert.ErrorIs(out.Err, ErrNoReturn)
}

func TestExecuteLoad(t *testing.T) {
	assert := assert.New(t)

	input := []int64{4, 5, 6}

	table := [](struct {
		name  string
		index string
		value int64
	}){
		{"first", "#0", 4},
		{"last", "#2", 6},
		{"negative", "#-1", 0},
		{"length", "#3", 0},
		{"far", "#1000", 0},
	}

	for _, entry := range table {
		prog := mustAssemble(t, "mov r0, #99", "load r0, "+entry.index, "ret r0")
		out := Execute(prog, input, nil, nil, loadCosts)
		assert.True(out.Returned(), entry.name)
		assert.Equal(entry.value, out.Value, entry.name)
		assert.Equal(4, out.Cycles, entry.name)
	}

	out := Execute(mustAssemble(t, "load r0, #0", "ret r0"), nil, nil, nil, nil)
	assert.True(out.Returned())
	assert.Equal(int64(0), out.Value)
}

func TestExecuteLabels(t *testing.T) {
	assert := assert.New(t)

	prog := mustAssemble(t,
		"start:",
		"  mov r0, #0",
		"loop:",
		"  add r0, #1",
		"  cmp r0, #3",
		"  jlt loop",
		"done: ret r0",
	)

	out := Execute(prog, nil, nil, nil, nil)
	assert.True(out.Returned())
	assert.Equal(int64(3), out.Value)
	assert.Equal(11, out.Cycles)
}

func TestExecuteFlagsPersist(t *testing.T) {
	assert := assert.New(t)

	prog := mustAssemble(t,
		"cmp r0, #1",
		"mov r1, #7",
		"add r2, #100",
		"jlt yes",
		"mov r1, #0",
		"yes: ret r1",
	)
	out := Execute(prog, nil, nil, nil, nil)
	assert.Equal(int64(7), out.Value)

	// Flags start cleared; no conditional jump is taken before a cmp.
	prog = mustAssemble(t,
		"mov r0, #1",
		"jgt no",
		"jlt no",
		"jeq no",
		"ret r0",
		"no: mov r0, #2",
		"ret r0",
	)
	out = Execute(prog, nil, nil, nil, nil)
	assert.Equal(int64(1), out.Value)
}

func TestExecuteCompare(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		left  string
		flags Flags
	}){
		{"greater", "#9", Flags{Greater: true}},
		{"equal", "#5", Flags{Equal: true}},
		{"less", "#-5", Flags{Less: true}},
	}

	for _, entry := range table {
		mach := &Machine{}
		mach.Step(Move{Dst: REG_R1, Src: Imm(5)}, nil, nil)
		src, err := parseSource(entry.left)
		assert.NoError(err)
		mach.Step(Move{Dst: REG_R0, Src: src}, nil, nil)
		mach.Step(Compare{Left: REG_R0, Src: Reg(REG_R1)}, nil, nil)
		assert.Equal(entry.flags, mach.Flags, entry.name)
		assert.Equal(3, mach.Pc, entry.name)
	}
}

func TestExecuteTunables(t *testing.T) {
	assert := assert.New(t)

	prog := mustAssemble(t,
		"slider r0",
		"slider_3 r1",
		"add r0, r1",
		"ret r0",
	)

	out := Execute(prog, nil, []int64{10, 20, 30}, nil, nil)
	assert.Equal(int64(40), out.Value)

	out = Execute(prog, nil, []int64{10}, nil, nil)
	assert.Equal(int64(10), out.Value)

	out = Execute(prog, nil, nil, nil, nil)
	assert.Equal(int64(0), out.Value)

	out = Execute(prog, nil, nil, permitsExcept(OP_SLIDER), nil)
	assert.Equal("slider not permitted", out.Reason())
}

func TestExecuteArithmetic(t *testing.T) {
	assert := assert.New(t)

	prog := mustAssemble(t,
		"mov r0, #9223372036854775807",
		"add r0, #1",
		"ret r0",
	)
	out := Execute(prog, nil, nil, nil, nil)
	assert.Equal(int64(math.MinInt64), out.Value)

	prog = mustAssemble(t,
		"mov r1, #10",
		"mov r0, #3",
		"sub r0, r1",
		"ret r0",
	)
	out = Execute(prog, nil, nil, nil, nil)
	assert.Equal(int64(-7), out.Value)
}

func TestExecuteCostClamp(t *testing.T) {
	assert := assert.New(t)

	prog := mustAssemble(t, "mov r0, #5", "ret r0")
	out := Execute(prog, nil, nil, nil, testCosts{OP_MOV: 0, OP_RET: -3})
	assert.Equal(2, out.Cycles)
}

func TestExecuteDeterministic(t *testing.T) {
	assert := assert.New(t)

	prog := mustAssemble(t, sumOrMax)
	in := &Interpreter{Costs: loadCosts}

	input := []int64{10, 3, 7, 42, 1}
	tunables := []int64{50}

	first := in.Execute(prog, input, tunables)
	for range 10 {
		assert.Equal(first, in.Execute(prog, input, tunables))
	}
	assert.Equal([]int64{10, 3, 7, 42, 1}, input)
	assert.Equal([]int64{50}, tunables)
}

const sumOrMax = `; Task: for each array, return its SUM or MAX.
;   If arr[0] > threshold -> return MAX
;   If arr[0] <= threshold -> return SUM

  SLIDER r0      ; r0 = your threshold guess
  LOAD r1, #0    ; r1 = arr[0]
  CMP r1, r0
  JGT find_max
  JMP find_sum

find_max:
  MOV r0, #0
  MOV r1, #0
  LEN r2
max_loop:
  CMP r1, r2
  JLT max_body
  JMP max_done
max_body:
  LOAD r3, r1
  CMP r3, r0
  JLT skip_max
  MOV r0, r3
skip_max:
  ADD r1, #1
  JMP max_loop
max_done:
  RET r0

find_sum:
  MOV r0, #0
  MOV r1, #0
  LEN r2
sum_loop:
  CMP r1, r2
  JLT sum_body
  JMP sum_done
sum_body:
  LOAD r3, r1
  ADD r0, r3
  ADD r1, #1
  JMP sum_loop
sum_done:
  RET r0
`

func TestExecuteSumOrMax(t *testing.T) {
	assert := assert.New(t)

	prog := mustAssemble(t, sumOrMax)
	in := &Interpreter{Costs: loadCosts, Permitted: permitsExcept()}

	input := []int64{10, 3, 7, 42, 1}

	out := in.Execute(prog, input, []int64{50})
	assert.True(out.Returned(), out.Reason())
	assert.Equal(int64(63), out.Value)

	out = in.Execute(prog, input, []int64{5})
	assert.True(out.Returned(), out.Reason())
	assert.Equal(int64(42), out.Value)

	in.Permitted = permitsExcept(OP_LEN)
	out = in.Execute(prog, input, []int64{5})
	assert.True(errors.Is(out.Err, ErrNotPermitted(OP_LEN)))
}

func TestMachineString(t *testing.T) {
	assert := assert.New(t)

	mach := &Machine{Pc: 3, Cycles: 7}
	mach.Register[2] = -4
	mach.Flags.Less = true

	text := mach.String()
	assert.Contains(text, "   pc: 3\n")
	assert.Contains(text, "   r2: -4\n")
	assert.Contains(text, "flags: lt\n")
}
