// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package race drives an assembled program over a stream of work units,
// scoring correctness and cycle efficiency.
package race

import (
	"context"
	"iter"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ezrec/carrera/internal"
	"github.com/ezrec/carrera/vm"
)

const (
	STEPS       = 20  // Correct answers needed to finish a race.
	TOTAL_UNITS = 100 // Work units available in a standard race.
)

// Race state. Interpreter + Program + tunable Panel.
type Race struct {
	Verbose     bool            // If set, logs every lap.
	Interpreter *vm.Interpreter // Shared, read-only interpreter configuration.
	Program     *vm.Program     // Program under test.
	Panel       *Panel          // Live tunables; nil supplies none.
	Steps       int             // Correct answers to finish; zero races every unit.
	Parallel    int             // Concurrent executions in Run; zero uses GOMAXPROCS.
}

// NewRace creates a standard race for a program.
func NewRace(prog *vm.Program, in *vm.Interpreter) (race *Race) {
	race = &Race{
		Interpreter: in,
		Program:     prog,
		Panel:       NewPanel(vm.TUNABLE_SLOTS),
		Steps:       STEPS,
	}

	return
}

func (race *Race) interpreter() *vm.Interpreter {
	if race.Interpreter == nil {
		return &vm.Interpreter{}
	}
	return race.Interpreter
}

// Step runs the program on a single work unit with the current tunables.
// A failed execution counts as a wrong answer.
func (race *Race) Step(index int, unit WorkUnit) (lap Lap) {
	tunables := race.Panel.Snapshot()
	out := race.interpreter().Execute(race.Program, unit.Input, tunables)

	lap = Lap{
		Unit:     index,
		WorkUnit: unit,
		Tunables: tunables,
		Outcome:  out,
		Correct:  out.Returned() && out.Value == unit.Expected,
	}

	if race.Verbose {
		log.Printf("race: unit %d %v => %v (expected %d)", index, unit.Input, out, unit.Expected)
	}

	return
}

func (race *Race) parallel() int {
	if race.Parallel > 0 {
		return race.Parallel
	}
	return runtime.GOMAXPROCS(0)
}

func (race *Race) finished(res *Result) bool {
	return race.Steps > 0 && res.Correct >= race.Steps
}

// Run races the program over units until Steps correct answers are
// reached or the units run out. Up to Parallel units execute at once,
// each with its own machine state; laps are tallied in unit order, and
// laps after the finishing one are discarded.
//
// If ctx is cancelled, Run stops dispatching and returns the partial
// result with the context error.
func (race *Race) Run(ctx context.Context, units iter.Seq[WorkUnit]) (res *Result, err error) {
	res = &Result{}

	if race.Program == nil {
		err = ErrNoProgram
		return
	}

	index := 0
	for batch := range internal.IterSeqBatch(units, race.parallel()) {
		if err = ctx.Err(); err != nil {
			return
		}

		laps := make([]Lap, len(batch))

		grp, gctx := errgroup.WithContext(ctx)
		for n, unit := range batch {
			grp.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				laps[n] = race.Step(index+n, unit)
				return nil
			})
		}

		err = grp.Wait()
		if err != nil {
			return
		}

		for _, lap := range laps {
			res.Add(lap)
			if race.finished(res) {
				res.Finished = true
				return
			}
		}

		index += len(batch)
	}

	res.Finished = race.Steps == 0

	return
}
