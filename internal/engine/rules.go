package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity represents the severity level of a finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
	SeverityInfo     Severity = "info"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityMajor:
		return 3
	case SeverityMinor:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// CoerceSeverity maps a raw string to one of the four known severities,
// defaulting to minor when the value is missing or unrecognized.
func CoerceSeverity(raw string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(raw))) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityMajor:
		return SeverityMajor
	case SeverityMinor:
		return SeverityMinor
	case SeverityInfo:
		return SeverityInfo
	default:
		return SeverityMinor
	}
}

// MeetsThreshold returns true if severity is at or above the threshold.
func MeetsThreshold(s Severity, threshold string) bool {
	if threshold == "none" || threshold == "" {
		return false
	}
	return SeverityRank(s) >= SeverityRank(Severity(threshold))
}

// TriggerType is the closed set of rule trigger kinds. Keeping it an
// enum rather than a raw string forces every dispatch site to handle
// TriggerUnknown explicitly instead of dropping rules on a typo.
type TriggerType int

const (
	TriggerUnknown TriggerType = iota
	TriggerPattern
	TriggerHeuristic
	TriggerHybrid
	TriggerLLM
)

// ParseTriggerType maps the wire string to a TriggerType.
func ParseTriggerType(raw string) TriggerType {
	switch raw {
	case "pattern":
		return TriggerPattern
	case "heuristic":
		return TriggerHeuristic
	case "hybrid":
		return TriggerHybrid
	case "llm":
		return TriggerLLM
	default:
		return TriggerUnknown
	}
}

// String returns the wire name of the trigger type.
func (t TriggerType) String() string {
	switch t {
	case TriggerPattern:
		return "pattern"
	case TriggerHeuristic:
		return "heuristic"
	case TriggerHybrid:
		return "hybrid"
	case TriggerLLM:
		return "llm"
	default:
		return "unknown"
	}
}

// EvidenceMode selects which diff lines count as evidence for a rule.
type EvidenceMode string

const (
	EvidenceAddedOnly EvidenceMode = "added-only"
	EvidenceDiffAny   EvidenceMode = "diff-any"
)

// RulesDoc is a declarative rules document as loaded from disk.
type RulesDoc struct {
	Version int        `json:"version" yaml:"version"`
	Domain  string     `json:"domain" yaml:"domain"`
	Rules   []RuleItem `json:"rules" yaml:"rules"`
}

// RuleItem is a single declarative rule.
type RuleItem struct {
	ID          string       `json:"id" yaml:"id"`
	Area        string       `json:"area" yaml:"area"`
	Severity    string       `json:"severity" yaml:"severity"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Trigger     *RuleTrigger `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Status      string       `json:"status,omitempty" yaml:"status,omitempty"`
	Version     int          `json:"version,omitempty" yaml:"version,omitempty"`
}

// RuleTrigger declares how a rule matches against a diff.
type RuleTrigger struct {
	Type               string   `json:"type,omitempty" yaml:"type,omitempty"`
	Evidence           string   `json:"evidence,omitempty" yaml:"evidence,omitempty"`
	RequireSignalMatch bool     `json:"requireSignalMatch,omitempty" yaml:"requireSignalMatch,omitempty"`
	Signals            []string `json:"signals,omitempty" yaml:"signals,omitempty"`
	Exempt             []string `json:"exempt,omitempty" yaml:"exempt,omitempty"`
	FileGlob           []string `json:"file_glob,omitempty" yaml:"file_glob,omitempty"`
}

// RuleConstraint is the flattened, defaulted matching spec for one rule.
type RuleConstraint struct {
	ID                 string       `json:"id"`
	Area               string       `json:"area"`
	Severity           Severity     `json:"severity"`
	Message            string       `json:"message"`
	Type               TriggerType  `json:"-"`
	TypeName           string       `json:"type"`
	Evidence           EvidenceMode `json:"evidence"`
	RequireSignalMatch bool         `json:"requireSignalMatch"`
	Signals            []string     `json:"signals"`
	Exempt             []string     `json:"exempt"`
	FileGlob           []string     `json:"fileGlob,omitempty"`
}

// DeriveConstraints flattens a rules document into one constraint per
// rule, in declared order, with defaults applied: evidence added-only,
// requireSignalMatch false, empty signal and exempt lists. A nil document
// or empty rule list yields an empty slice.
func DeriveConstraints(doc *RulesDoc) []RuleConstraint {
	if doc == nil || len(doc.Rules) == 0 {
		return nil
	}
	constraints := make([]RuleConstraint, 0, len(doc.Rules))
	for _, r := range doc.Rules {
		c := RuleConstraint{
			ID:       r.ID,
			Area:     r.Area,
			Severity: CoerceSeverity(r.Severity),
			Message:  r.Description,
			Evidence: EvidenceAddedOnly,
			Signals:  []string{},
			Exempt:   []string{},
		}
		if t := r.Trigger; t != nil {
			c.Type = ParseTriggerType(t.Type)
			if EvidenceMode(t.Evidence) == EvidenceDiffAny {
				c.Evidence = EvidenceDiffAny
			}
			c.RequireSignalMatch = t.RequireSignalMatch
			if len(t.Signals) > 0 {
				c.Signals = t.Signals
			}
			if len(t.Exempt) > 0 {
				c.Exempt = t.Exempt
			}
			if len(t.FileGlob) > 0 {
				c.FileGlob = t.FileGlob
			}
		}
		c.TypeName = c.Type.String()
		constraints = append(constraints, c)
	}
	return constraints
}

// LoadRules loads a rules document from a JSON or YAML file. Returns nil
// document and nil error if path is empty.
func LoadRules(path string) (*RulesDoc, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var doc RulesDoc
	if isYAMLPath(path) {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing rules file: %w", err)
		}
		return &doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}
	return &doc, nil
}

// LintRules reports structural problems in a rules document that the
// engine would otherwise absorb silently: missing or duplicate IDs,
// unrecognized trigger types and evidence modes, severities that will be
// coerced, and regex signals that fail to compile. A nil document lints
// clean.
func LintRules(doc *RulesDoc) []string {
	if doc == nil {
		return nil
	}
	var problems []string
	seen := make(map[string]bool)
	for i, r := range doc.Rules {
		label := r.ID
		if label == "" {
			label = fmt.Sprintf("rules[%d]", i)
			problems = append(problems, fmt.Sprintf("%s: missing id", label))
		}
		if seen[r.ID] && r.ID != "" {
			problems = append(problems, fmt.Sprintf("%s: duplicate id", label))
		}
		seen[r.ID] = true

		if r.Severity != "" && CoerceSeverity(r.Severity) == SeverityMinor &&
			strings.ToLower(strings.TrimSpace(r.Severity)) != string(SeverityMinor) {
			problems = append(problems, fmt.Sprintf("%s: unrecognized severity %q (will be treated as minor)", label, r.Severity))
		}

		t := r.Trigger
		if t == nil {
			problems = append(problems, fmt.Sprintf("%s: no trigger (rule will never fire)", label))
			continue
		}
		if ParseTriggerType(t.Type) == TriggerUnknown {
			problems = append(problems, fmt.Sprintf("%s: unrecognized trigger type %q (rule will never fire)", label, t.Type))
		}
		if t.Evidence != "" && EvidenceMode(t.Evidence) != EvidenceAddedOnly && EvidenceMode(t.Evidence) != EvidenceDiffAny {
			problems = append(problems, fmt.Sprintf("%s: unrecognized evidence mode %q (will be treated as added-only)", label, t.Evidence))
		}
		if t.RequireSignalMatch && len(t.Signals) == 0 {
			problems = append(problems, fmt.Sprintf("%s: requireSignalMatch with no signals (rule will never fire)", label))
		}
		for _, s := range t.Signals {
			if msg := lintSignal(s); msg != "" {
				problems = append(problems, fmt.Sprintf("%s: signal %q: %s", label, s, msg))
			}
		}
		for _, s := range t.Exempt {
			if msg := lintSignal(s); msg != "" {
				problems = append(problems, fmt.Sprintf("%s: exempt %q: %s (exemption will never apply)", label, s, msg))
			}
		}
	}
	return problems
}

func lintSignal(signal string) string {
	if !strings.HasPrefix(signal, "regex:") {
		return ""
	}
	if _, err := regexp.Compile("(?m)" + strings.TrimPrefix(signal, "regex:")); err != nil {
		return "invalid regex"
	}
	return ""
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
