package engine

import "fmt"

const (
	// maxFindingTextBytes bounds the quoted line text inside a finding.
	maxFindingTextBytes = 180
	// maxSnippetBytes bounds the snippet attached to an LLM task.
	maxSnippetBytes = 240
)

// LLMTask is one deferred review unit for an external LLM-backed step.
// Rules with the llm trigger produce tasks instead of static findings.
type LLMTask struct {
	RuleID  string `json:"rule_id"`
	File    string `json:"file"`
	Locator string `json:"locator"`
	Snippet string `json:"snippet"`
}

// Result is the full output of one analysis pass.
type Result struct {
	Findings []Finding `json:"findings"`
	LLMTasks []LLMTask `json:"llm_tasks"`
}

// Analyze runs the static engine over a unified diff: parse the diff,
// derive rule constraints, dispatch each rule by trigger type, and check
// every added import edge against the boundary config. Output depends
// only on the three inputs; malformed rules or boundaries degrade to
// fewer findings, never to an error.
func Analyze(diffText string, rules *RulesDoc, boundaries *BoundariesConfig) Result {
	files := ParseDiff(diffText)
	constraints := DeriveConstraints(rules)

	result := Result{Findings: []Finding{}, LLMTasks: []LLMTask{}}

	for _, c := range constraints {
		switch c.Type {
		case TriggerPattern, TriggerHeuristic, TriggerHybrid:
			result.Findings = append(result.Findings, runPatternRule(c, files)...)
		case TriggerLLM:
			result.LLMTasks = append(result.LLMTasks, planLLMTasks(c, files)...)
		case TriggerUnknown:
			// Rule with a missing or unrecognized trigger: contributes nothing.
		}
	}

	result.Findings = append(result.Findings, checkBoundaryEdges(files, boundaries)...)

	return result
}

// runPatternRule applies one pattern-style constraint to every file with
// added lines. Exemption is file-granular: a single exempted added line
// suppresses the whole file for this rule. The required-signal gate is
// evaluated at file granularity for a cheap skip, then re-checked per
// line so only signal-bearing lines are reported.
func runPatternRule(c RuleConstraint, files []FileDiff) []Finding {
	signals := compileSet(c.Signals)
	exempt := compileSet(c.Exempt)

	var findings []Finding
	for _, file := range files {
		if !fileInScope(c, file.Path) {
			continue
		}
		added := file.AddedTexts()
		if len(added) == 0 {
			continue
		}
		if !exempt.empty() && exempt.matchAny(added) {
			continue
		}
		if c.RequireSignalMatch && !signals.matchAny(added) {
			continue
		}

		for _, hunk := range file.Hunks {
			for _, a := range hunk.Added {
				if c.RequireSignalMatch && !signals.matchLine(a.Text) {
					continue
				}
				findings = append(findings, patternFinding(c, file.Path, a))
			}
		}
	}
	return findings
}

func patternFinding(c RuleConstraint, path string, a AddedLine) Finding {
	message := c.Message
	if message == "" {
		message = c.ID
	}
	why := c.Message
	if why == "" {
		why = fmt.Sprintf("Rule %s flagged this added line.", c.ID)
	}
	locator := fmt.Sprintf("L%d", a.Line)
	body := fmt.Sprintf("[L%d] %s: \"%s\"", a.Line, message, clip(a.Text, maxFindingTextBytes))
	return BuildFinding(c.ID, c.Area, c.Severity, path, locator, []string{body}, why, "")
}

// planLLMTasks emits one task per qualifying added line for an llm-typed
// rule, using the same file_glob, exemption, and signal gates as the
// pattern handler. No static findings are produced here; the external
// LLM step returns raw findings that pass through NormalizeFindings.
func planLLMTasks(c RuleConstraint, files []FileDiff) []LLMTask {
	signals := compileSet(c.Signals)
	exempt := compileSet(c.Exempt)

	var tasks []LLMTask
	for _, file := range files {
		if !fileInScope(c, file.Path) {
			continue
		}
		added := file.AddedTexts()
		if len(added) == 0 {
			continue
		}
		if !exempt.empty() && exempt.matchAny(added) {
			continue
		}
		if c.RequireSignalMatch && !signals.matchAny(added) {
			continue
		}

		for _, hunk := range file.Hunks {
			for _, a := range hunk.Added {
				if c.RequireSignalMatch && !signals.matchLine(a.Text) {
					continue
				}
				tasks = append(tasks, LLMTask{
					RuleID:  c.ID,
					File:    file.Path,
					Locator: fmt.Sprintf("L%d", a.Line),
					Snippet: clip(a.Text, maxSnippetBytes),
				})
			}
		}
	}
	return tasks
}

// fileInScope applies the rule's file_glob scope; an empty scope matches
// every file.
func fileInScope(c RuleConstraint, path string) bool {
	if len(c.FileGlob) == 0 {
		return true
	}
	posix := ToPosix(path)
	for _, glob := range c.FileGlob {
		if globMatch(glob, posix) {
			return true
		}
	}
	return false
}

// checkBoundaryEdges scans every added line for an import specifier and
// reports one finding per boundary rule the edge violates. Boundary
// findings are independent of the trigger-type handlers.
func checkBoundaryEdges(files []FileDiff, cfg *BoundariesConfig) []Finding {
	if cfg == nil || len(cfg.Forbidden) == 0 {
		return nil
	}
	var findings []Finding
	for _, file := range files {
		fromFile := ToPosix(file.Path)
		for _, hunk := range file.Hunks {
			for _, a := range hunk.Added {
				spec, ok := ExtractImportSpecifier(a.Text)
				if !ok {
					continue
				}
				edge := ImportEdge{FromFile: fromFile, Specifier: spec}
				for _, rule := range CheckForbidden(edge, cfg) {
					findings = append(findings, boundaryFinding(rule, file.Path, a, spec))
				}
			}
		}
	}
	return findings
}

func boundaryFinding(rule BoundaryRule, path string, a AddedLine, specifier string) Finding {
	why := rule.Explain
	if why == "" {
		why = fmt.Sprintf("Import crosses the forbidden boundary %s.", rule.Rule)
	}
	suggestion := ""
	if len(rule.AllowVia) > 0 {
		suggestion = fmt.Sprintf("Route the dependency through an allowed adapter (%s).", rule.AllowVia[0])
	}
	locator := fmt.Sprintf("L%d", a.Line)
	body := fmt.Sprintf("[L%d] import \"%s\" violates boundary %s", a.Line, clip(specifier, maxFindingTextBytes), rule.Rule)
	return BuildFinding(rule.Rule, "architecture", SeverityCritical, path, locator, []string{body}, why, suggestion)
}
