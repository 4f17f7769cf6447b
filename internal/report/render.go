package report

import (
	"fmt"
	"strings"
)

// Render writes the report as human-readable text. The layout is stable so
// it can be golden-tested.
func Render(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "program %s\n", r.Program)
	for _, ir := range r.Instructions {
		if ir.Failure != nil {
			fmt.Fprintf(&b, "  %s: model error [%s] %s\n", ir.Instruction, ir.Failure.Code, ir.Failure.Message)
			continue
		}
		if len(ir.Findings) == 0 {
			fmt.Fprintf(&b, "  %s: ok\n", ir.Instruction)
			continue
		}
		fmt.Fprintf(&b, "  %s:\n", ir.Instruction)
		for _, f := range ir.Findings {
			loc := strings.Join(f.SortedSlots(), ", ")
			if loc == "" {
				loc = f.Effect
			}
			fmt.Fprintf(&b, "    %-8s %s (%s): %s\n", f.Severity, f.Rule, loc, f.Message)
			fmt.Fprintf(&b, "             fix: %s\n", f.Remediation)
		}
	}
	fmt.Fprintf(&b, "%d instruction(s), %d critical, %d warning, %d info, %d model error(s)\n",
		r.Summary.Instructions, r.Summary.Critical, r.Summary.Warning, r.Summary.Info, r.Summary.Failures)
	return b.String()
}
