package race

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

// WorkUnit is one input array and the answer a correct program returns.
type WorkUnit struct {
	Input    []int64
	Expected int64
}

func (unit WorkUnit) String() string {
	return formatUnit(unit)
}

// Tape provides sequential reading and writing of work units, one per
// line:
//
//	expected: v1 v2 v3 ...
//
// Values may be separated by spaces or commas; ';' starts a comment.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	lineno int
	err    error
}

// Err returns the first error met by Units, if any.
func (tc *Tape) Err() error {
	return tc.err
}

// Units returns an iterator that yields work units from the input stream.
// Iteration stops at the end of input or at the first error.
func (tc *Tape) Units() iter.Seq[WorkUnit] {
	return func(yield func(unit WorkUnit) bool) {
		if tc.Input == nil {
			return
		}

		scanner := bufio.NewScanner(tc.Input)
		for scanner.Scan() {
			tc.lineno++
			text := scanner.Text()
			line, _, _ := strings.Cut(text, ";")
			line = strings.TrimSpace(line)
			if len(line) == 0 {
				continue
			}

			unit, err := parseUnit(line)
			if err != nil {
				tc.err = &ErrTapeSyntax{LineNo: tc.lineno, Line: text, Err: err}
				return
			}

			if !yield(unit) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			tc.err = err
		}
	}
}

// Send writes a work unit to the output stream.
func (tc *Tape) Send(unit WorkUnit) (err error) {
	_, err = fmt.Fprintln(tc.Output, formatUnit(unit))
	return
}

func parseValue(word string) (value int64, err error) {
	value, err = strconv.ParseInt(word, 10, 64)
	if err != nil {
		err = ErrTapeValue(word)
	}
	return
}

func parseUnit(line string) (unit WorkUnit, err error) {
	expected, values, ok := strings.Cut(line, ":")
	if !ok {
		err = ErrTapeExpected
		return
	}

	unit.Expected, err = parseValue(strings.TrimSpace(expected))
	if err != nil {
		return
	}

	unit.Input = []int64{}
	words := strings.FieldsFunc(values, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	for _, word := range words {
		var value int64
		value, err = parseValue(word)
		if err != nil {
			return
		}
		unit.Input = append(unit.Input, value)
	}

	return
}

func formatUnit(unit WorkUnit) string {
	words := make([]string, 0, len(unit.Input))
	for _, value := range unit.Input {
		words = append(words, strconv.FormatInt(value, 10))
	}
	return fmt.Sprintf("%d: %v", unit.Expected, strings.Join(words, " "))
}
