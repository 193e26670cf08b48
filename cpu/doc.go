// Package cpu implements the execution engine for the A64 integer subset.
//
// The engine fetches instruction words from a little-endian memory image,
// decodes each address once into an Instruction bound to its handler, and
// keeps the decoded instructions in a cache indexed by word address. The
// register file has 31 general registers, the stack pointer, and a discard
// slot that xzr resolves to, which always reads as zero.
//
// Run policies, such as halting on hlt or on a self branch, belong to the
// caller: Step reports the program counter before and after each step.
package cpu
