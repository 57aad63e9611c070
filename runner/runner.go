// Package runner holds a user's program source and its assembled form.
package runner

import (
	"log"

	"github.com/ezrec/carrera/catalog"
	"github.com/ezrec/carrera/vm"
)

// Runner is an editable program. The assembly is redone only on Edit, and
// the assembled Program is shared by every execution until the next edit.
type Runner struct {
	Verbose bool
	Name    string

	source   string
	assembly *vm.Assembly
}

// New creates a runner from source text.
func New(name, source string) (rn *Runner) {
	rn = &Runner{Name: name}
	rn.Edit(source)
	return
}

// Source returns the current source text.
func (rn *Runner) Source() string {
	return rn.source
}

// Edit replaces the source text and re-assembles it.
func (rn *Runner) Edit(source string) {
	rn.source = source
	asm := &vm.Assembler{Verbose: rn.Verbose}
	rn.assembly = asm.Assemble(source)

	if rn.Verbose {
		log.Printf("runner %v: %d instructions, %d diagnostics", rn.Name, rn.assembly.Program.Len(), len(rn.assembly.Diagnostics))
	}
}

// Assembly returns the result of the last assembly.
func (rn *Runner) Assembly() *vm.Assembly {
	return rn.assembly
}

// Program returns the assembled program, or an *vm.ErrAssembly.
func (rn *Runner) Program() (prog *vm.Program, err error) {
	err = rn.assembly.Err()
	if err != nil {
		return
	}
	prog = rn.assembly.Program
	return
}

// Report is the result of validating a runner against a permission set.
type Report struct {
	Ok          bool     // No diagnostics and no missing permissions.
	Diagnostics []string // Assembly diagnostics.
	Missing     []vm.Op  // Referenced opcodes that are not permitted.
	Used        []vm.Op  // Referenced opcodes.
}

// Validate checks that the runner assembles and uses only permitted
// opcodes. Referenced opcodes are found even when assembly fails.
func (rn *Runner) Validate(permitted catalog.Set) (report Report) {
	report.Diagnostics = rn.assembly.Messages()
	report.Used = vm.References(rn.source)
	report.Missing = permitted.Missing(report.Used)
	report.Ok = len(report.Diagnostics) == 0 && len(report.Missing) == 0
	return
}
