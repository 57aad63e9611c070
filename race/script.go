package race

import (
	"iter"
	"log"
	"slices"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/carrera/catalog"
	"github.com/ezrec/carrera/vm"
)

// Script is a race description produced by a Starlark program.
//
// The program must bind `units`, a list of (array, expected) pairs, and
// may bind `tunables` (initial panel values), `permitted` (opcode names)
// and `steps`. The predeclared SLOTS, STEPS, TOTAL_UNITS, SLIDER_MIN and
// SLIDER_MAX are available.
type Script struct {
	Units     []WorkUnit
	Tunables  []int64
	Permitted catalog.Set // Nil when the script does not restrict opcodes.
	Steps     int
}

var scriptPredeclared = starlark.StringDict{
	"SLOTS":       starlark.MakeInt(vm.TUNABLE_SLOTS),
	"STEPS":       starlark.MakeInt(STEPS),
	"TOTAL_UNITS": starlark.MakeInt(TOTAL_UNITS),
	"SLIDER_MIN":  starlark.MakeInt(SLIDER_MIN),
	"SLIDER_MAX":  starlark.MakeInt(SLIDER_MAX),
}

// LoadScript executes a Starlark race description. src may be nil (read
// filename), a string, a []byte or an io.Reader.
func LoadScript(filename string, src any) (script *Script, err error) {
	defer func() {
		if err != nil {
			script = nil
			err = &ErrScript{Name: filename, Err: err}
		}
	}()

	thread := &starlark.Thread{
		Name: filename,
		Print: func(_ *starlark.Thread, msg string) {
			log.Printf("%v: %v", filename, msg)
		},
	}
	opts := &syntax.FileOptions{
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
	}

	dict, err := starlark.ExecFileOptions(opts, thread, filename, src, scriptPredeclared)
	if err != nil {
		return
	}

	script = &Script{Steps: STEPS}

	units, ok := dict["units"]
	if !ok {
		err = ErrScriptValue(f("units not defined"))
		return
	}
	script.Units, err = toUnits(units)
	if err != nil {
		return
	}

	if value, ok := dict["tunables"]; ok {
		script.Tunables, err = toInts("tunables", value)
		if err != nil {
			return
		}
	}

	if value, ok := dict["permitted"]; ok {
		script.Permitted, err = toSet(value)
		if err != nil {
			return
		}
	}

	if value, ok := dict["steps"]; ok {
		var steps int64
		steps, err = toInt("steps", value)
		if err != nil {
			return
		}
		if steps < 0 {
			err = ErrScriptValue(f("steps %d is negative", steps))
			return
		}
		script.Steps = int(steps)
	}

	return
}

// Panel creates a panel initialised with the script's tunables.
func (script *Script) Panel(slots int) (panel *Panel, err error) {
	panel = NewPanel(max(slots, len(script.Tunables)))
	for n, value := range script.Tunables {
		err = panel.Set(n, value)
		if err != nil {
			return
		}
	}
	return
}

func toInt(what string, value starlark.Value) (v int64, err error) {
	num, ok := value.(starlark.Int)
	if !ok {
		err = ErrScriptValue(f("%v: %v is not an int", what, value.Type()))
		return
	}
	v, ok = num.Int64()
	if !ok {
		err = ErrScriptValue(f("%v: %v out of range", what, num))
	}
	return
}

func iterate(what string, value starlark.Value, each func(n int, elem starlark.Value) error) (err error) {
	iter := starlark.Iterate(value)
	if iter == nil {
		return ErrScriptValue(f("%v: %v is not iterable", what, value.Type()))
	}
	defer iter.Done()

	var elem starlark.Value
	for n := 0; iter.Next(&elem); n++ {
		err = each(n, elem)
		if err != nil {
			return
		}
	}
	return
}

func toInts(what string, value starlark.Value) (ints []int64, err error) {
	ints = []int64{}
	err = iterate(what, value, func(n int, elem starlark.Value) error {
		v, err := toInt(f("%v[%d]", what, n), elem)
		ints = append(ints, v)
		return err
	})
	return
}

func toUnits(value starlark.Value) (units []WorkUnit, err error) {
	err = iterate("units", value, func(n int, elem starlark.Value) error {
		what := f("units[%d]", n)
		pair, ok := elem.(starlark.Indexable)
		if !ok || pair.Len() != 2 {
			return ErrScriptValue(f("%v: expected (array, expected) pair", what))
		}
		input, err := toInts(what, pair.Index(0))
		if err != nil {
			return err
		}
		expected, err := toInt(what, pair.Index(1))
		if err != nil {
			return err
		}
		units = append(units, WorkUnit{Input: input, Expected: expected})
		return nil
	})
	return
}

func toSet(value starlark.Value) (set catalog.Set, err error) {
	set = catalog.Set{}
	err = iterate("permitted", value, func(n int, elem starlark.Value) error {
		name, ok := starlark.AsString(elem)
		if !ok {
			return ErrScriptValue(f("permitted[%d]: %v is not a string", n, elem.Type()))
		}
		op, ok := vm.ParseOp(name)
		if !ok {
			return catalog.ErrOpUnknown(name)
		}
		set.Add(op)
		return nil
	})
	return
}

// Values returns the script's units as an iterator.
func (script *Script) Values() iter.Seq[WorkUnit] {
	return slices.Values(script.Units)
}
