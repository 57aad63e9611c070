package race

import (
	"errors"

	"github.com/ezrec/carrera/translate"
)

var f = translate.From

var (
	ErrTapeExpected = errors.New(f("missing expected answer"))
	ErrNoProgram    = errors.New(f("no program"))
)

type ErrSlot int

func (err ErrSlot) Error() string {
	return f("tunable slot %d out of range", int(err))
}

type ErrTapeValue string

func (err ErrTapeValue) Error() string {
	return f("'%v' is not a number", string(err))
}

// ErrTapeSyntax locates an error in a work unit tape.
type ErrTapeSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrTapeSyntax) Error() string {
	return f("tape line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrTapeSyntax) Unwrap() error {
	return err.Err
}

type ErrScriptValue string

func (err ErrScriptValue) Error() string {
	return f("bad value: %v", string(err))
}

// ErrScript locates an error in a race script.
type ErrScript struct {
	Name string
	Err  error
}

func (err *ErrScript) Error() string {
	return f("%v: %v", err.Name, err.Err)
}

func (err *ErrScript) Unwrap() error {
	return err.Err
}

// ErrRuntime indicates the location of a failed work unit.
type ErrRuntime struct {
	Unit   int
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("unit %d line %d %v", err.Unit, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
