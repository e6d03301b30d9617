package report

import (
	"fmt"
	"io"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
)

// WriteText renders a colored, human-readable rendition of the summary to
// w — one block per rule, green when the rule is clean, red when it has
// any violation.
func WriteText(w io.Writer, summary Summary) {
	fmt.Fprintf(w, "%s%s=== Guardrail Check ===%s\n\n", colorBold, colorCyan, colorReset)
	for _, rule := range summary.Rules {
		color := colorGreen
		if rule.Violated() {
			color = colorRed
		}
		fmt.Fprintf(w, "%s%-40s%s", colorBold, rule.Rule.Name, colorReset)
		if rule.Violated() {
			fmt.Fprintf(w, " %s[VIOLATION]%s\n", color, colorReset)
		} else {
			fmt.Fprintf(w, " %s[OK]%s\n", color, colorReset)
		}

		for _, res := range rule.Results {
			if res.Found {
				fmt.Fprintf(w, "  %sOK%s   %s reaches %s (%d hops)\n",
					colorGreen, colorReset, res.EntryPoint.ID(), res.Required.ID(), len(res.Witness))
				continue
			}
			fmt.Fprintf(w, "  %sMISS%s %s does not reach %s\n",
				colorRed, colorReset, res.EntryPoint.ID(), res.Required.ID())
			if res.Message != "" {
				fmt.Fprintf(w, "       %s\n", res.Message)
			}
		}
		for _, v := range rule.Violations {
			fmt.Fprintf(w, "  %sPAIR%s %s reaches %s but never %v\n",
				colorYellow, colorReset, v.EntryPoint.ID(), v.Obligation.Trigger.ID(), v.Obligation.Completions)
			for _, line := range witnessLines(v.Witness) {
				fmt.Fprintf(w, "       %s\n", line)
			}
		}
		fmt.Fprintln(w)
	}
}
