package engine

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// RepoInfo contains repository metadata supplied by the caller.
type RepoInfo struct {
	Root   string `json:"root"`
	Head   string `json:"head"`
	Branch string `json:"branch"`
}

// InputInfo describes what was analyzed.
type InputInfo struct {
	Mode           string `json:"mode"`
	Range          string `json:"range,omitempty"`
	RulesFile      string `json:"rulesFile,omitempty"`
	BoundariesFile string `json:"boundariesFile,omitempty"`
}

// SeverityCounts holds counts by severity level.
type SeverityCounts struct {
	Critical int `json:"critical"`
	Major    int `json:"major"`
	Minor    int `json:"minor"`
	Info     int `json:"info"`
}

// Total returns the sum across all severities.
func (c SeverityCounts) Total() int {
	return c.Critical + c.Major + c.Minor + c.Info
}

// Summary provides an overview of findings.
type Summary struct {
	Counts          SeverityCounts `json:"counts"`
	HighestSeverity Severity       `json:"highestSeverity"`
}

// Timing contains performance metrics.
type Timing struct {
	GitMs     int64 `json:"gitMs"`
	AnalyzeMs int64 `json:"analyzeMs"`
	TotalMs   int64 `json:"totalMs"`
}

// Report is the top-level output structure. Run identity and timing are
// stamped here, outside Analyze, so the analysis itself stays a pure
// function of its inputs.
type Report struct {
	Tool     string    `json:"tool"`
	Version  string    `json:"version"`
	RunID    string    `json:"runId"`
	Repo     RepoInfo  `json:"repo"`
	Inputs   InputInfo `json:"inputs"`
	Summary  Summary   `json:"summary"`
	Findings []Finding `json:"findings"`
	LLMTasks []LLMTask `json:"llm_tasks,omitempty"`
	Timing   Timing    `json:"timing"`
}

// ComputeSummary calculates the summary from findings.
func ComputeSummary(findings []Finding) Summary {
	var s Summary
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			s.Counts.Critical++
		case SeverityMajor:
			s.Counts.Major++
		case SeverityMinor:
			s.Counts.Minor++
		case SeverityInfo:
			s.Counts.Info++
		}
		if SeverityRank(f.Severity) > SeverityRank(s.HighestSeverity) {
			s.HighestSeverity = f.Severity
		}
	}
	return s
}

// BuildReport wraps an analysis result with run metadata.
func BuildReport(result Result, repo RepoInfo, inputs InputInfo, timing Timing) *Report {
	return &Report{
		Tool:     "diffgate",
		Version:  "1.0",
		RunID:    generateRunID(),
		Repo:     repo,
		Inputs:   inputs,
		Summary:  ComputeSummary(result.Findings),
		Findings: result.Findings,
		LLMTasks: result.LLMTasks,
		Timing:   timing,
	}
}

func generateRunID() string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%d", time.Now().UnixNano())))
	return fmt.Sprintf("%x", h[:16])
}
