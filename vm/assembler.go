// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package vm

import (
	"io"
	"log"
	"maps"
	"slices"
	"strings"
)

// Assembler is a two pass assembler for the carrera language.
//
// Pass one collects label names, pass two decodes instructions, and a final
// link step binds every label to the count of instructions successfully
// decoded before it. A line that fails to decode reserves no slot.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.
	Slots   int  // Number of tunable slots; zero means TUNABLE_SLOTS.
}

// Assembly is the result of assembling a source text.
type Assembly struct {
	Program     *Program // Decoded instructions; not executable unless Ok().
	Diagnostics []error  // Every diagnostic, in order of discovery.
}

// Ok returns true if the assembly produced no diagnostics.
func (as *Assembly) Ok() bool {
	return len(as.Diagnostics) == 0
}

// Err returns nil, or an *ErrAssembly holding all diagnostics.
func (as *Assembly) Err() error {
	if as.Ok() {
		return nil
	}
	return &ErrAssembly{Diagnostics: slices.Clone(as.Diagnostics)}
}

// Messages returns the diagnostics as human-readable strings.
func (as *Assembly) Messages() (msgs []string) {
	for _, err := range as.Diagnostics {
		msgs = append(msgs, err.Error())
	}
	return
}

// Assemble assembles text with a default Assembler.
func Assemble(text string) *Assembly {
	asm := &Assembler{}
	return asm.Assemble(text)
}

// sourceLine is a non-empty, comment-stripped line.
type sourceLine struct {
	lineno int
	text   string
	labels []string
	words  []string
}

// splitWords splits a line on whitespace and commas.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\r' || r == '\v' || r == '\f'
	})
}

// stripComment truncates at the first comment delimiter and trims.
func stripComment(line string) string {
	line, _, _ = strings.Cut(line, ";")
	return strings.TrimSpace(line)
}

// isLabelDef returns the label name if word is `identifier:`.
func isLabelDef(word string) (label string, ok bool) {
	label, ok = strings.CutSuffix(word, ":")
	if !ok || !reLabel.MatchString(label) {
		return "", false
	}
	return label, true
}

// scan splits text into source lines, peeling leading label definitions.
func scan(text string) (lines []sourceLine) {
	for n, raw := range strings.Split(text, "\n") {
		line := stripComment(raw)
		if len(line) == 0 {
			continue
		}

		sl := sourceLine{lineno: n + 1, text: line, words: splitWords(line)}
		for len(sl.words) > 0 {
			label, ok := isLabelDef(sl.words[0])
			if !ok {
				break
			}
			sl.labels = append(sl.labels, label)
			sl.words = sl.words[1:]
		}

		lines = append(lines, sl)
	}

	return
}

func (asm *Assembler) slots() int {
	if asm.Slots > 0 {
		return asm.Slots
	}
	return TUNABLE_SLOTS
}

// Assemble assembles source text into a program and diagnostics.
// It never fails outright; every problem is reported as a diagnostic.
func (asm *Assembler) Assemble(text string) (as *Assembly) {
	as = &Assembly{}

	diag := func(sl *sourceLine, err error) {
		if asm.Verbose {
			log.Printf("asm: line %v: %v", sl.lineno, err)
		}
		as.Diagnostics = append(as.Diagnostics, &ErrSyntax{LineNo: sl.lineno, Line: sl.text, Err: err})
	}

	lines := scan(text)

	// Pass 1: label names.
	known := make(map[string]bool, 16)
	for n := range lines {
		sl := &lines[n]
		for _, label := range sl.labels {
			if known[label] {
				diag(sl, ErrLabelDuplicate(label))
				continue
			}
			known[label] = true
		}
	}

	// Pass 2: instructions.
	prog := &Program{Labels: make(map[string]int, len(known))}
	for n := range lines {
		sl := &lines[n]

		for _, label := range sl.labels {
			if _, ok := prog.Labels[label]; !ok {
				prog.Labels[label] = len(prog.Instructions)
			}
		}

		if len(sl.words) == 0 {
			continue
		}

		ins, err := asm.decode(sl.words, sl.lineno, known)
		if err != nil {
			diag(sl, err)
			continue
		}

		if asm.Verbose {
			log.Printf("asm: %v: [%d] %v", sl.lineno, len(prog.Instructions), ins)
		}
		prog.Instructions = append(prog.Instructions, ins)
	}

	// Link jump targets.
	for n, ins := range prog.Instructions {
		jump, ok := ins.(Jump)
		if !ok {
			continue
		}
		jump.Target = prog.Labels[jump.Label]
		prog.Instructions[n] = jump
	}

	as.Program = prog

	return
}

// Parse reads an input stream and assembles it. If there are any
// diagnostics, the returned error is an *ErrAssembly.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	text, err := io.ReadAll(input)
	if err != nil {
		return
	}

	as := asm.Assemble(string(text))
	err = as.Err()
	if err != nil {
		return
	}

	prog = as.Program
	return
}

// decode decodes the words of a single instruction line.
func (asm *Assembler) decode(words []string, lineno int, known map[string]bool) (ins Instruction, err error) {
	op, slot, ok := lookupMnemonic(strings.ToLower(words[0]), asm.slots())
	if !ok {
		err = ErrInstructionUnknown(words[0])
		return
	}

	args := words[1:]
	pos := Position{LineNo: lineno}

	arg := func(n int) string {
		if n < len(args) {
			return args[n]
		}
		return ""
	}

	register := func(n int) (reg Register, err error) {
		reg, ok := parseRegister(arg(n))
		if !ok {
			err = &ErrOperand{Op: op, Slot: n + 1, Want: KIND_REGISTER, Got: arg(n)}
		}
		return
	}

	source := func(n int) (src Source, err error) {
		src, err = parseSource(arg(n))
		if err == errNotSource {
			err = &ErrOperand{Op: op, Slot: n + 1, Want: KIND_SOURCE, Got: arg(n)}
		}
		return
	}

	label := func(n int) (name string, err error) {
		name = arg(n)
		if !reLabel.MatchString(name) {
			err = &ErrOperand{Op: op, Slot: n + 1, Want: KIND_LABEL, Got: name}
			return
		}
		if !known[name] {
			err = ErrLabelMissing(name)
		}
		return
	}

	arity := func(want int) error {
		if len(args) > want {
			return &ErrOperandCount{Op: op, Want: want, Got: len(args)}
		}
		return nil
	}

	switch op {
	case OP_MOV, OP_LOAD, OP_ADD, OP_SUB, OP_CMP:
		var dst Register
		var src Source
		if dst, err = register(0); err != nil {
			return
		}
		if src, err = source(1); err != nil {
			return
		}
		if err = arity(2); err != nil {
			return
		}
		switch op {
		case OP_MOV:
			ins = Move{Position: pos, Dst: dst, Src: src}
		case OP_LOAD:
			ins = Load{Position: pos, Dst: dst, Index: src}
		case OP_ADD:
			ins = Add{Position: pos, Dst: dst, Src: src}
		case OP_SUB:
			ins = Sub{Position: pos, Dst: dst, Src: src}
		case OP_CMP:
			ins = Compare{Position: pos, Left: dst, Src: src}
		}
	case OP_LEN, OP_SLIDER, OP_RET:
		var reg Register
		if reg, err = register(0); err != nil {
			return
		}
		if err = arity(1); err != nil {
			return
		}
		switch op {
		case OP_LEN:
			ins = Length{Position: pos, Dst: reg}
		case OP_SLIDER:
			ins = Tunable{Position: pos, Dst: reg, Slot: slot}
		case OP_RET:
			ins = Return{Position: pos, Src: reg}
		}
	case OP_JMP, OP_JGT, OP_JLT, OP_JEQ:
		var name string
		if name, err = label(0); err != nil {
			return
		}
		if err = arity(1); err != nil {
			return
		}
		cond := map[Op]Cond{
			OP_JMP: COND_ALWAYS,
			OP_JGT: COND_GREATER,
			OP_JLT: COND_LESS,
			OP_JEQ: COND_EQUAL,
		}[op]
		ins = Jump{Position: pos, Cond: cond, Label: name}
	default:
		err = ErrInstructionUnknown(words[0])
	}

	return
}

// References returns the opcodes that text refers to, whether or not it
// assembles. Unknown mnemonics and malformed operands are ignored.
func References(text string) []Op {
	used := map[Op]bool{}
	for _, sl := range scan(text) {
		if len(sl.words) == 0 {
			continue
		}
		op, _, ok := lookupMnemonic(strings.ToLower(sl.words[0]), TUNABLE_SLOTS)
		if ok {
			used[op] = true
		}
	}

	return slices.Sorted(maps.Keys(used))
}
