package catalog

import (
	"github.com/ezrec/carrera/translate"
)

var f = translate.From

type ErrOpUnknown string

func (err ErrOpUnknown) Error() string {
	return f("unknown opcode %q", string(err))
}

type ErrCategoryUnknown string

func (err ErrCategoryUnknown) Error() string {
	return f("unknown category %q", string(err))
}

type ErrCycles int

func (err ErrCycles) Error() string {
	return f("cycles %d must be at least 1", int(err))
}

// ErrCatalog locates an error in a catalog file.
type ErrCatalog struct {
	Name string
	Err  error
}

func (err *ErrCatalog) Error() string {
	if len(err.Name) == 0 {
		return f("catalog: %v", err.Err)
	}
	return f("catalog: %v: %v", err.Name, err.Err)
}

func (err *ErrCatalog) Unwrap() error {
	return err.Err
}
