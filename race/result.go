package race

import (
	"maps"
	"slices"

	"github.com/ezrec/carrera/vm"
)

// Lap is the outcome of a single work unit.
type Lap struct {
	Unit     int        // Index of the work unit in the race.
	WorkUnit            // The work unit raced.
	Tunables []int64    // Tunable snapshot the program saw.
	Outcome  vm.Outcome // Interpreter outcome.
	Correct  bool       // Returned the expected answer.
}

// Err returns an *ErrRuntime if the program failed on this unit.
func (lap *Lap) Err() error {
	if lap.Outcome.Returned() {
		return nil
	}
	return &ErrRuntime{Unit: lap.Unit, LineNo: lap.Outcome.LineNo, Err: lap.Outcome.Err}
}

// Result is the tally of a race.
type Result struct {
	UnitsUsed     int            // Work units consumed.
	Correct       int            // Units answered correctly.
	Wrong         int            // Units answered wrongly, or failed.
	TotalCycles   int            // Cycles over all units.
	SuccessCycles int            // Cycles over correct units.
	FailureCycles int            // Cycles over wrong units.
	Finished      bool           // The required correct answers were reached.
	Failures      map[string]int // Count of each failure reason.
	Laps          []Lap          // Every lap, in race order.
}

// Add tallies a lap.
func (res *Result) Add(lap Lap) {
	res.UnitsUsed++
	res.TotalCycles += lap.Outcome.Cycles

	if lap.Correct {
		res.Correct++
		res.SuccessCycles += lap.Outcome.Cycles
	} else {
		res.Wrong++
		res.FailureCycles += lap.Outcome.Cycles
	}

	if !lap.Outcome.Returned() {
		if res.Failures == nil {
			res.Failures = map[string]int{}
		}
		res.Failures[lap.Outcome.Reason()]++
	}

	res.Laps = append(res.Laps, lap)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// AvgCycles returns the mean cycles per unit.
func (res *Result) AvgCycles() float64 {
	return ratio(res.TotalCycles, res.UnitsUsed)
}

// AvgSuccessCycles returns the mean cycles per correct unit.
func (res *Result) AvgSuccessCycles() float64 {
	return ratio(res.SuccessCycles, res.Correct)
}

// AvgFailureCycles returns the mean cycles per wrong unit.
func (res *Result) AvgFailureCycles() float64 {
	return ratio(res.FailureCycles, res.Wrong)
}

// Accuracy returns the fraction of units answered correctly.
func (res *Result) Accuracy() float64 {
	return ratio(res.Correct, res.UnitsUsed)
}

// Better returns true if res should replace best as the personal best:
// only finished races count, fewer units used wins, and ties go to fewer
// total cycles.
func (res *Result) Better(best *Result) bool {
	if !res.Finished {
		return false
	}
	if best == nil || !best.Finished {
		return true
	}
	if res.UnitsUsed != best.UnitsUsed {
		return res.UnitsUsed < best.UnitsUsed
	}
	return res.TotalCycles < best.TotalCycles
}

// Summary returns a localized report of the race.
func (res *Result) Summary() (text string) {
	status := f("finished")
	if !res.Finished {
		status = f("did not finish")
	}

	text += f("%v: %d units, %d correct, %d wrong\n", status, res.UnitsUsed, res.Correct, res.Wrong)
	text += f("total cycles: %d\n", res.TotalCycles)
	text += f("accuracy: %.0f%%\n", res.Accuracy()*100)
	text += f("avg cycles/unit: %.1f, /correct: %.1f, /wrong: %.1f\n",
		res.AvgCycles(), res.AvgSuccessCycles(), res.AvgFailureCycles())

	for _, reason := range slices.Sorted(maps.Keys(res.Failures)) {
		text += f("  %v: %d\n", reason, res.Failures[reason])
	}

	return
}
