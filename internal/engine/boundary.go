package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// BoundariesConfig declares forbidden import relationships between
// path globs, with optional allow-via adapter overrides.
type BoundariesConfig struct {
	Layers    []Layer        `json:"layers,omitempty" yaml:"layers,omitempty"`
	Forbidden []BoundaryRule `json:"forbidden" yaml:"forbidden"`
}

// Layer names an architectural layer for documentation purposes.
type Layer struct {
	Name  string `json:"name" yaml:"name"`
	Path  string `json:"path" yaml:"path"`
	Index int    `json:"index" yaml:"index"`
}

// BoundaryRule forbids imports from files matching From.Glob to
// specifiers matching To.Glob, unless an AllowVia glob matches first.
type BoundaryRule struct {
	Rule     string   `json:"rule" yaml:"rule"`
	From     GlobRef  `json:"from" yaml:"from"`
	To       GlobRef  `json:"to" yaml:"to"`
	AllowVia []string `json:"allowVia,omitempty" yaml:"allowVia,omitempty"`
	Explain  string   `json:"explain,omitempty" yaml:"explain,omitempty"`
}

// GlobRef wraps a glob pattern on the wire.
type GlobRef struct {
	Glob string `json:"glob" yaml:"glob"`
}

// ImportEdge is one import statement found on an added line.
type ImportEdge struct {
	FromFile  string `json:"fromFile"`
	Specifier string `json:"specifier"`
}

var (
	importFromRe    = regexp.MustCompile(`from\s+['"]([^'"]+)['"]`)
	importBareRe    = regexp.MustCompile(`import\s+['"]([^'"]+)['"]`)
	exportStarRe    = regexp.MustCompile(`export\s+\*\s+from\s+['"]([^'"]+)['"]`)
	repeatedSlashRe = regexp.MustCompile(`/{2,}`)
)

// ToPosix converts backslash separators to forward slashes and collapses
// repeated separators.
func ToPosix(path string) string {
	return repeatedSlashRe.ReplaceAllString(strings.ReplaceAll(path, `\`, "/"), "/")
}

// ExtractImportSpecifier pulls an ESM import specifier out of a source
// line. The trailing "//" comment is stripped first so commented-out
// imports don't match. Returns false for non-ESM forms such as require()
// and for lines that were entirely a comment.
func ExtractImportSpecifier(line string) (string, bool) {
	if idx := strings.Index(line, "//"); idx >= 0 {
		line = line[:idx]
	}
	for _, re := range []*regexp.Regexp{importFromRe, importBareRe, exportStarRe} {
		if m := re.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// normalizeSpecifier strips a leading run of "./" and "../" segments so
// relative imports can be compared against project-rooted globs.
func normalizeSpecifier(spec string) string {
	for {
		switch {
		case strings.HasPrefix(spec, "./"):
			spec = spec[2:]
		case strings.HasPrefix(spec, "../"):
			spec = spec[3:]
		default:
			return spec
		}
	}
}

// globMatch evaluates a doublestar glob: "*" spans one path segment,
// "**" any depth, POSIX separators, case-sensitive. A malformed pattern
// matches nothing.
func globMatch(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, path)
	return err == nil && ok
}

// violatesRule reports whether the edge crosses this boundary rule.
// The allow-via override wins over the to-glob.
func violatesRule(edge ImportEdge, rule BoundaryRule) bool {
	if !globMatch(rule.From.Glob, edge.FromFile) {
		return false
	}
	spec := normalizeSpecifier(edge.Specifier)
	for _, allow := range rule.AllowVia {
		if globMatch(allow, spec) {
			return false
		}
	}
	return globMatch(rule.To.Glob, spec)
}

// CheckForbidden returns every forbidden rule the edge violates. An edge
// may cross multiple boundaries at once, so evaluation never
// short-circuits.
func CheckForbidden(edge ImportEdge, cfg *BoundariesConfig) []BoundaryRule {
	if cfg == nil {
		return nil
	}
	var violated []BoundaryRule
	for _, rule := range cfg.Forbidden {
		if violatesRule(edge, rule) {
			violated = append(violated, rule)
		}
	}
	return violated
}

// LoadBoundaries loads a boundaries config from a JSON or YAML file.
// Returns nil config and nil error if path is empty.
func LoadBoundaries(path string) (*BoundariesConfig, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading boundaries file: %w", err)
	}
	var cfg BoundariesConfig
	if isYAMLPath(path) {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing boundaries file: %w", err)
		}
		return &cfg, nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing boundaries file: %w", err)
	}
	return &cfg, nil
}
