// Package memory implements the 64KB address space of the 6809 model.
//
// The low half ($0000-$7FFF) is RAM. The high half ($8000-$FFFF) is ROM: the
// assembler fills it through the load path, and the running program can only
// read it.
package memory
