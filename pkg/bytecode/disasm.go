package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing for the program.
func Disassemble(p Program) string {
	return DisassembleWithName(p, "")
}

// DisassembleWithName returns a human-readable listing with a name header.
func DisassembleWithName(p Program, name string) string {
	var sb strings.Builder

	// Header
	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	sb.WriteString(fmt.Sprintf("; stax bytecode v%d\n", WireVersion))
	sb.WriteString(fmt.Sprintf("; %d instructions", len(p)))
	if n := p.LabelCount(); n > 0 {
		sb.WriteString(fmt.Sprintf(", %d labels", n))
	}
	sb.WriteString("\n\n")

	for i, in := range p {
		sb.WriteString(fmt.Sprintf("%04d  %s\n", i, formatInstr(in)))
	}

	return sb.String()
}

// formatInstr formats a single instruction for the listing. Label markers
// are shown in source form so jump targets stand out.
func formatInstr(in Instr) string {
	if in.Op == OpLabel {
		return fmt.Sprintf("LABEL %d ; %d:", in.Arg, in.Arg)
	}
	return in.String()
}

// DisassembleToLines returns the disassembly as a slice of listing lines,
// one per instruction, without the header.
func DisassembleToLines(p Program) []string {
	lines := make([]string, 0, len(p))
	for i, in := range p {
		lines = append(lines, fmt.Sprintf("%04d  %s", i, formatInstr(in)))
	}
	return lines
}
