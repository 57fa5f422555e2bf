package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dshills/diffgate/internal/engine"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *engine.Report) error {
	total := report.Summary.Counts.Total()

	fmt.Fprintf(w, "## Diffgate Analysis\n\n")

	fmt.Fprintf(w, "| Severity | Count |\n")
	fmt.Fprintf(w, "|----------|-------|\n")
	fmt.Fprintf(w, "| Critical | %d    |\n", report.Summary.Counts.Critical)
	fmt.Fprintf(w, "| Major    | %d    |\n", report.Summary.Counts.Major)
	fmt.Fprintf(w, "| Minor    | %d    |\n", report.Summary.Counts.Minor)
	fmt.Fprintf(w, "| Info     | %d    |\n", report.Summary.Counts.Info)
	fmt.Fprintf(w, "| **Total** | **%d** |\n\n", total)

	if total == 0 && len(report.LLMTasks) == 0 {
		fmt.Fprintln(w, "No issues found. :white_check_mark:")
		return nil
	}

	grouped := groupBySeverity(report.Findings)
	severities := []engine.Severity{
		engine.SeverityCritical,
		engine.SeverityMajor,
		engine.SeverityMinor,
		engine.SeverityInfo,
	}
	for _, sev := range severities {
		findings := grouped[sev]
		if len(findings) == 0 {
			continue
		}

		icon := mdSeverityIcon(sev)
		label := strings.ToUpper(string(sev))

		fmt.Fprintf(w, "<details>\n<summary>%s %s (%d)</summary>\n\n", icon, label, len(findings))

		sort.SliceStable(findings, func(i, j int) bool {
			return findings[i].File < findings[j].File
		})

		for _, f := range findings {
			fmt.Fprintf(w, "### %s\n\n", f.Rule)
			fmt.Fprintf(w, "**`%s %s`** | %s\n\n", f.File, f.Locator, f.Area)
			for _, line := range f.Finding {
				fmt.Fprintf(w, "- `%s`\n", line)
			}
			if len(f.Finding) > 0 {
				fmt.Fprintln(w)
			}
			if f.Why != "" {
				fmt.Fprintf(w, "%s\n\n", f.Why)
			}
			if f.Suggestion != "" {
				fmt.Fprintf(w, "**Suggestion:**\n\n")
				fmt.Fprintf(w, "> %s\n\n", strings.ReplaceAll(f.Suggestion, "\n", "\n> "))
			}
			fmt.Fprintf(w, "---\n\n")
		}

		fmt.Fprintf(w, "</details>\n\n")
	}

	if len(report.LLMTasks) > 0 {
		fmt.Fprintf(w, "<details>\n<summary>:speech_balloon: Deferred to LLM review (%d)</summary>\n\n", len(report.LLMTasks))
		for _, task := range report.LLMTasks {
			fmt.Fprintf(w, "- `%s %s` — %s\n", task.File, task.Locator, task.RuleID)
		}
		fmt.Fprintf(w, "\n</details>\n\n")
	}

	fmt.Fprintf(w, "*Analyzed in %dms (git: %dms, analyze: %dms)*\n",
		report.Timing.TotalMs, report.Timing.GitMs, report.Timing.AnalyzeMs)

	return nil
}

func mdSeverityIcon(s engine.Severity) string {
	switch s {
	case engine.SeverityCritical:
		return ":red_circle:"
	case engine.SeverityMajor:
		return ":orange_circle:"
	case engine.SeverityMinor:
		return ":yellow_circle:"
	case engine.SeverityInfo:
		return ":blue_circle:"
	default:
		return ":white_circle:"
	}
}
