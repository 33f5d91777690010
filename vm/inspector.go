package vm

import (
	"fmt"
	"strings"
)

// Snapshot is a read-only copy of Machine state for diagnostics. Taking a
// snapshot never affects execution state, and mutating a snapshot never
// affects the Machine it was taken from.
type Snapshot struct {
	Stack     []int64 // bottom first; the last element is the stack top
	Memory    []int64
	JumpTable []int // label id -> instruction index
}

// Snapshot copies the current stack, memory, and jump table.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		Stack:     append([]int64(nil), m.stack...),
		Memory:    append([]int64(nil), m.memory...),
		JumpTable: append([]int(nil), m.jumpTable...),
	}
}

// String formats the snapshot as a multi-line diagnostic dump.
func (s Snapshot) String() string {
	var sb strings.Builder

	sb.WriteString("stack:  ")
	writeCells(&sb, s.Stack)
	sb.WriteString("\nmemory: ")
	writeCells(&sb, s.Memory)

	sb.WriteString("\nlabels: ")
	if len(s.JumpTable) == 0 {
		sb.WriteString("(none)")
	}
	for id, idx := range s.JumpTable {
		if id > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprintf("%d->%04d", id, idx))
	}
	sb.WriteString("\n")

	return sb.String()
}

func writeCells(sb *strings.Builder, cells []int64) {
	if len(cells) == 0 {
		sb.WriteString("(empty)")
		return
	}
	sb.WriteString("[")
	for i, c := range cells {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprintf("%d", c))
	}
	sb.WriteString("]")
}
