// Package vm implements the stax virtual machine.
//
// This package contains:
//   - the operand stack and append-only memory store
//   - two-pass jump label resolution
//   - the instruction dispatch loop
//   - read-only state snapshots for diagnostics
package vm
