package engine

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Finding is a single review finding. Fingerprint is a content hash of
// (rule, file, locator, finding[0]) and is the downstream dedup key.
type Finding struct {
	Rule        string   `json:"rule"`
	Area        string   `json:"area"`
	Severity    Severity `json:"severity"`
	File        string   `json:"file"`
	Locator     string   `json:"locator"`
	Finding     []string `json:"finding"`
	Why         string   `json:"why"`
	Suggestion  string   `json:"suggestion"`
	Fingerprint string   `json:"fingerprint"`
}

// Fingerprint computes the 40-hex content hash for a finding identity
// tuple. SHA-1 here is a stable content hash for deduplication, not a
// cryptographic commitment; identical tuples always reproduce the same
// digest and changing any element changes it.
func Fingerprint(rule, file, locator, firstLine string) string {
	h := sha1.Sum([]byte(rule + "\n" + file + "\n" + locator + "\n" + firstLine))
	return fmt.Sprintf("%x", h)
}

// BuildFinding assembles a finding and stamps its fingerprint.
func BuildFinding(rule, area string, severity Severity, file, locator string, findingLines []string, why, suggestion string) Finding {
	first := ""
	if len(findingLines) > 0 {
		first = findingLines[0]
	}
	return Finding{
		Rule:        rule,
		Area:        area,
		Severity:    severity,
		File:        file,
		Locator:     locator,
		Finding:     findingLines,
		Why:         why,
		Suggestion:  suggestion,
		Fingerprint: Fingerprint(rule, file, locator, first),
	}
}

// NormalizeFindings defensively coerces loosely-typed finding objects,
// such as provider-returned JSON, into well-formed findings. Entries
// lacking a rule or file are dropped, severity is coerced to one of the
// four known values, the finding body is coerced to a string slice, and
// a fallback fingerprint is computed when the producer did not supply
// one.
func NormalizeFindings(raw []map[string]any) []Finding {
	findings := make([]Finding, 0, len(raw))
	for _, obj := range raw {
		f := Finding{
			Rule:        stringField(obj, "rule"),
			Area:        stringField(obj, "area"),
			Severity:    CoerceSeverity(stringField(obj, "severity")),
			File:        stringField(obj, "file"),
			Locator:     stringField(obj, "locator"),
			Finding:     stringSliceField(obj, "finding"),
			Why:         stringField(obj, "why"),
			Suggestion:  stringField(obj, "suggestion"),
			Fingerprint: stringField(obj, "fingerprint"),
		}
		if f.Rule == "" || f.File == "" {
			continue
		}
		if f.Fingerprint == "" {
			f.Fingerprint = fallbackFingerprint(f)
		}
		findings = append(findings, f)
	}
	return findings
}

// ParseRawFindings unmarshals a JSON array of loosely-typed finding
// objects and normalizes it. Malformed JSON yields no findings.
func ParseRawFindings(data []byte) []Finding {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	return NormalizeFindings(raw)
}

// fallbackFingerprint hashes the canonical JSON of the normalized
// finding (minus the fingerprint field itself), so re-normalizing the
// same object reproduces the same digest.
func fallbackFingerprint(f Finding) string {
	f.Fingerprint = ""
	data, err := json.Marshal(f)
	if err != nil {
		return Fingerprint(f.Rule, f.File, f.Locator, "")
	}
	h := sha1.Sum(data)
	return fmt.Sprintf("%x", h)
}

func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func stringSliceField(obj map[string]any, key string) []string {
	switch v := obj[key].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	default:
		return []string{}
	}
}

// DeduplicateFindings removes duplicate findings by fingerprint,
// keeping the first occurrence.
func DeduplicateFindings(findings []Finding) []Finding {
	seen := make(map[string]bool)
	var result []Finding
	for _, f := range findings {
		if !seen[f.Fingerprint] {
			seen[f.Fingerprint] = true
			result = append(result, f)
		}
	}
	return result
}

// SortFindings orders findings by severity (critical first), then file,
// then locator line number.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		ri := SeverityRank(findings[i].Severity)
		rj := SeverityRank(findings[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		return locatorLine(findings[i].Locator) < locatorLine(findings[j].Locator)
	})
}

// locatorLine extracts the line number from an "L<n>" locator; hunk
// locators sort last.
func locatorLine(locator string) int {
	if !strings.HasPrefix(locator, "L") {
		return int(^uint(0) >> 1)
	}
	n, err := strconv.Atoi(locator[1:])
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}

// clip truncates s to at most max bytes, appending no marker; finding
// text stays deterministic regardless of input length. The cut backs up
// to a rune boundary so truncation never emits invalid UTF-8.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
