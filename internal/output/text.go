package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dshills/diffgate/internal/engine"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *engine.Report) error {
	ew := &errWriter{w: w}

	total := report.Summary.Counts.Total()
	ew.printf("Diffgate Analysis — %s mode\n", report.Inputs.Mode)
	if report.Inputs.Range != "" {
		ew.printf("Range: %s\n", report.Inputs.Range)
	}
	if report.Repo.Root != "" {
		ew.printf("Repository: %s (branch: %s)\n", report.Repo.Root, report.Repo.Branch)
	}
	ew.println(strings.Repeat("─", 60))
	ew.printf("Findings: %d total", total)
	if total > 0 {
		ew.printf(" (%d critical, %d major, %d minor, %d info)",
			report.Summary.Counts.Critical,
			report.Summary.Counts.Major,
			report.Summary.Counts.Minor,
			report.Summary.Counts.Info,
		)
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	if total == 0 && len(report.LLMTasks) == 0 {
		ew.println("\nNo issues found. Looks good!")
		return ew.err
	}

	// Group by severity (critical first), then by file
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

		label := strings.ToUpper(string(sev))
		ew.printf("\n%s %s\n", severityIcon(sev), label)
		ew.println(strings.Repeat("─", 40))

		sort.SliceStable(findings, func(i, j int) bool {
			return findings[i].File < findings[j].File
		})

		for _, f := range findings {
			ew.printf("\n  %s %s  [%s]\n", f.File, f.Locator, f.Rule)
			for _, line := range f.Finding {
				ew.printf("    %s\n", line)
			}
			if f.Why != "" {
				for _, line := range wrapText(f.Why, 70) {
					ew.printf("    %s\n", line)
				}
			}
			if f.Suggestion != "" {
				ew.println("  Suggestion:")
				for _, line := range wrapText(f.Suggestion, 70) {
					ew.printf("    %s\n", line)
				}
			}
		}
	}

	if len(report.LLMTasks) > 0 {
		ew.printf("\nDeferred to LLM review: %d task(s)\n", len(report.LLMTasks))
		for _, task := range report.LLMTasks {
			ew.printf("  %s %s  [%s]\n", task.File, task.Locator, task.RuleID)
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %dms (git: %dms, analyze: %dms)\n",
		report.Timing.TotalMs, report.Timing.GitMs, report.Timing.AnalyzeMs)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func groupBySeverity(findings []engine.Finding) map[engine.Severity][]engine.Finding {
	m := make(map[engine.Severity][]engine.Finding)
	for _, f := range findings {
		m[f.Severity] = append(m[f.Severity], f)
	}
	return m
}

func severityIcon(s engine.Severity) string {
	switch s {
	case engine.SeverityCritical:
		return "[!!]"
	case engine.SeverityMajor:
		return "[!]"
	case engine.SeverityMinor:
		return "[-]"
	case engine.SeverityInfo:
		return "[i]"
	default:
		return "[?]"
	}
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
