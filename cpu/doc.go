// Package cpu implements the 6809 microprocessor and its assembler.
//
// The CPU has two 8-bit accumulators (A, B) that pair as the 16-bit D,
// four 16-bit index and stack registers (X, Y, U, S), a direct page
// register (DP), a program counter and the condition codes (CC).
// Instructions are decoded through three opcode pages, the second and
// third selected by the $10 and $11 prefix bytes.
//
// The assembler is two pass. The first pass binds labels and constants,
// and reserves space for every line. The second pass resolves every
// operand and emits code into the reserved space, padding with NOP
// where the final encoding is shorter than the first estimate.
// Operands may hold $(...) compile-time expressions over the symbols.
package cpu
