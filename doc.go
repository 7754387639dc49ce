// Package clesh implements a compiler and simulator for C-Lesh, a small
// imperative scripting language for authoring interactive audiovisual
// programs.
//
// A C-Lesh program is a text file of whitespace-separated tokens. The
// compiler translates it into a flat, fixed-size memory of blocks, where
// every address simultaneously carries a scalar value, an opcode with its
// operands, and a set of named fields. The simulator interprets that memory
// starting at a configured entry address, evaluating expressions and
// conditionals and driving an audiovisual backend through the IOControl
// interface.
//
// The language exposes its memory model directly: programs address blocks by
// number, store through pointers, and may overwrite code with data. There is
// no code/data separation and no sandboxing of the file commands.
package clesh
