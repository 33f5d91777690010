// Package bytecode defines the stax instruction set.
//
// This package contains:
//   - the closed Opcode set and its metadata table
//   - the Instr/Program representation executed by the vm package
//   - a disassembler for diagnostic listings
//   - a versioned CBOR wire format for compiled programs
package bytecode
