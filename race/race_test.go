package race

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/ezrec/carrera/translate"
	"github.com/ezrec/carrera/vm"
)

func TestMain(m *testing.M) {
	translate.SetLanguage(language.AmericanEnglish)
	os.Exit(m.Run())
}

type loadCosts struct{}

func (loadCosts) Cycles(op vm.Op) int {
	if op == vm.OP_LOAD {
		return 2
	}
	return 1
}

const sumOrMax = `
  slider r0
  load r1, #0
  cmp r1, r0
  jgt find_max
find_sum:
  mov r0, #0
  mov r1, #0
  len r2
sum_loop:
  cmp r1, r2
  jeq done
  load r3, r1
  add r0, r3
  add r1, #1
  jmp sum_loop
find_max:
  mov r0, #0
  mov r1, #0
  len r2
max_loop:
  cmp r1, r2
  jeq done
  load r3, r1
  add r1, #1
  cmp r3, r0
  jlt max_loop
  mov r0, r3
  jmp max_loop
done:
  ret r0
`

func mustAssemble(t *testing.T, text string) *vm.Program {
	t.Helper()

	as := vm.Assemble(text)
	if !as.Ok() {
		t.Fatalf("assemble: %v", as.Messages())
	}
	return as.Program
}

// sumOrMaxUnits yields count units alternating between sum and max
// answers for a threshold of 50.
func sumOrMaxUnits(count int) []WorkUnit {
	units := make([]WorkUnit, 0, count)
	for n := range count {
		first := int64(10)
		if n%2 == 1 {
			first = 90
		}
		input := []int64{first, int64(n), 3}
		expected := first + int64(n) + 3
		if first > 50 {
			expected = max(first, int64(n), 3)
		}
		units = append(units, WorkUnit{Input: input, Expected: expected})
	}
	return units
}

func TestRaceStep(t *testing.T) {
	assert := assert.New(t)

	race := NewRace(mustAssemble(t, sumOrMax), &vm.Interpreter{Costs: loadCosts{}})
	assert.Equal(STEPS, race.Steps)
	assert.Equal(vm.TUNABLE_SLOTS, race.Panel.Len())

	unit := WorkUnit{Input: []int64{10, 3, 7, 42, 1}, Expected: 63}
	lap := race.Step(7, unit)
	assert.Equal(7, lap.Unit)
	assert.True(lap.Correct)
	assert.Equal(int64(63), lap.Outcome.Value)
	assert.Equal([]int64{50, 50, 50}, lap.Tunables)

	assert.NoError(race.Panel.Set(0, 5))
	lap = race.Step(8, unit)
	assert.False(lap.Correct)
	assert.Equal(int64(42), lap.Outcome.Value)
	assert.NoError(lap.Err())
}

func TestRaceRun(t *testing.T) {
	assert := assert.New(t)

	for _, parallel := range []int{1, 3, 16} {
		race := NewRace(mustAssemble(t, sumOrMax), &vm.Interpreter{Costs: loadCosts{}})
		race.Parallel = parallel

		res, err := race.Run(context.Background(), slices.Values(sumOrMaxUnits(TOTAL_UNITS)))
		assert.NoError(err)
		assert.True(res.Finished)
		assert.Equal(STEPS, res.Correct)
		assert.Equal(STEPS, res.UnitsUsed)
		assert.Len(res.Laps, STEPS)
		for n, lap := range res.Laps {
			assert.Equal(n, lap.Unit)
		}
	}
}

func TestRaceRunWrong(t *testing.T) {
	assert := assert.New(t)

	race := NewRace(mustAssemble(t, sumOrMax), &vm.Interpreter{Costs: loadCosts{}})
	race.Parallel = 4
	// A threshold above every first element always sums; only the even
	// units are answered correctly.
	assert.NoError(race.Panel.Set(0, 100))

	res, err := race.Run(context.Background(), slices.Values(sumOrMaxUnits(TOTAL_UNITS)))
	assert.NoError(err)
	assert.True(res.Finished)
	assert.Equal(STEPS, res.Correct)
	assert.Equal(STEPS-1, res.Wrong)
	assert.Equal(2*STEPS-1, res.UnitsUsed)
	assert.Empty(res.Failures)
}

func TestRaceRunExhausted(t *testing.T) {
	assert := assert.New(t)

	race := NewRace(mustAssemble(t, "mov r0, #1\nret r0"), nil)

	res, err := race.Run(context.Background(), slices.Values(sumOrMaxUnits(10)))
	assert.NoError(err)
	assert.False(res.Finished)
	assert.Equal(10, res.UnitsUsed)
	assert.Equal(0, res.Correct)
	assert.Equal(20, res.TotalCycles)

	race.Steps = 0
	res, err = race.Run(context.Background(), slices.Values(sumOrMaxUnits(10)))
	assert.NoError(err)
	assert.True(res.Finished)
	assert.Equal(10, res.UnitsUsed)
}

func TestRaceRunFailures(t *testing.T) {
	assert := assert.New(t)

	race := NewRace(mustAssemble(t, "loop: jmp loop"), &vm.Interpreter{Limit: 10})
	race.Steps = 0

	res, err := race.Run(context.Background(), slices.Values(sumOrMaxUnits(5)))
	assert.NoError(err)
	assert.Equal(map[string]int{vm.ErrCycleLimit.Error(): 5}, res.Failures)
	assert.Equal(50, res.FailureCycles)

	var runtime *ErrRuntime
	assert.True(errors.As(res.Laps[3].Err(), &runtime))
	assert.Equal(3, runtime.Unit)
	assert.Equal(1, runtime.LineNo)
}

func TestRaceRunNoProgram(t *testing.T) {
	assert := assert.New(t)

	race := &Race{}
	_, err := race.Run(context.Background(), slices.Values(sumOrMaxUnits(1)))
	assert.ErrorIs(err, ErrNoProgram)
}

func TestRaceRunCancel(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	race := NewRace(mustAssemble(t, sumOrMax), nil)
	res, err := race.Run(ctx, slices.Values(sumOrMaxUnits(10)))
	assert.ErrorIs(err, context.Canceled)
	assert.Equal(0, res.UnitsUsed)
}

func TestRaceRunTape(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{Input: strings.NewReader("63: 10 3 7 42 1\n6: 1 2 3\n")}
	race := NewRace(mustAssemble(t, sumOrMax), nil)
	race.Steps = 2

	res, err := race.Run(context.Background(), tape.Units())
	assert.NoError(err)
	assert.NoError(tape.Err())
	assert.True(res.Finished)
	assert.Equal(2, res.Correct)
}
