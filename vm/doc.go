// Package vm implements the assembler and interpreter for the carrera
// racing language.
//
// The machine has four signed 64-bit registers (r0-r3), three comparison
// flags (greater, equal, less) set by cmp and read by the conditional
// jumps, read-only access to the input array of the current work unit and
// to a small ordered list of tunable values.
//
// The assembler turns source text into a label-resolved Program and a list
// of diagnostics; the interpreter executes a Program once per input under a
// hard cycle ceiling.
package vm
