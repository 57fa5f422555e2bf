package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dshills/diffgate/internal/engine"
)

// SARIFWriter outputs findings in SARIF v2.1.0 format.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, report *engine.Report) error {
	sarif := buildSARIF(report)
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	ShortDescription sarifMessage        `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig  `json:"defaultConfiguration"`
	Properties       sarifRuleProperties `json:"properties,omitempty"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifRuleProperties struct {
	Tags []string `json:"tags,omitempty"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	Level               string            `json:"level"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLocation   `json:"locations,omitempty"`
	Fixes               []sarifFix        `json:"fixes,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

type sarifFix struct {
	Description sarifMessage `json:"description"`
}

func buildSARIF(report *engine.Report) sarifLog {
	rulesMap := make(map[string]sarifRule)
	var results []sarifResult

	for _, f := range report.Findings {
		if _, ok := rulesMap[f.Rule]; !ok {
			rulesMap[f.Rule] = sarifRule{
				ID:               f.Rule,
				Name:             f.Area,
				ShortDescription: sarifMessage{Text: f.Why},
				DefaultConfig:    sarifDefaultConfig{Level: severityToLevel(f.Severity)},
				Properties:       sarifRuleProperties{Tags: []string{f.Area}},
			}
		}

		result := sarifResult{
			RuleID:  f.Rule,
			Level:   severityToLevel(f.Severity),
			Message: sarifMessage{Text: resultMessage(f)},
		}
		if f.Fingerprint != "" {
			result.PartialFingerprints = map[string]string{"diffgate/v1": f.Fingerprint}
		}

		line := locatorLine(f.Locator)
		result.Locations = append(result.Locations, sarifLocation{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: f.File},
				Region: sarifRegion{
					StartLine: line,
					EndLine:   line,
				},
			},
		})

		if f.Suggestion != "" {
			result.Fixes = append(result.Fixes, sarifFix{
				Description: sarifMessage{Text: f.Suggestion},
			})
		}

		results = append(results, result)
	}

	// Collect rules in stable order of first appearance
	var rules []sarifRule
	seen := make(map[string]bool)
	for _, f := range report.Findings {
		if !seen[f.Rule] {
			seen[f.Rule] = true
			rules = append(rules, rulesMap[f.Rule])
		}
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           "diffgate",
						Version:        report.Version,
						InformationURI: "https://github.com/dshills/diffgate",
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}
}

func resultMessage(f engine.Finding) string {
	if len(f.Finding) > 0 {
		return f.Finding[0]
	}
	return f.Why
}

// severityToLevel maps diffgate severity to SARIF level.
func severityToLevel(s engine.Severity) string {
	switch s {
	case engine.SeverityCritical, engine.SeverityMajor:
		return "error"
	case engine.SeverityMinor:
		return "warning"
	case engine.SeverityInfo:
		return "note"
	default:
		return "note"
	}
}

// locatorLine extracts the line number from an "L<n>" locator.
// Hunk-level locators map to line 1.
func locatorLine(locator string) int {
	if strings.HasPrefix(locator, "L") {
		if n, err := strconv.Atoi(locator[1:]); err == nil && n > 0 {
			return n
		}
	}
	return 1
}
