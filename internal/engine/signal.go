package engine

import (
	"regexp"
	"strings"
)

// Matcher reports whether a single line satisfies a compiled signal.
type Matcher func(line string) bool

// CompileMatcher turns a declarative signal string into a line predicate.
// Dispatch is by prefix: "regex:" compiles a multiline regular expression,
// "added-line:" and "pattern:" strip the prefix and match by substring,
// and anything else matches the raw signal by substring.
//
// A malformed regex never aborts a run: it compiles to a matcher that
// matches nothing. For required signals that means no findings (fail
// closed); for exemptions it means the exemption does not apply, so a bad
// exempt pattern can never become a global allow.
func CompileMatcher(signal string) Matcher {
	switch {
	case strings.HasPrefix(signal, "regex:"):
		re, err := regexp.Compile("(?m)" + strings.TrimPrefix(signal, "regex:"))
		if err != nil {
			return func(string) bool { return false }
		}
		return re.MatchString
	case strings.HasPrefix(signal, "added-line:"):
		return containsMatcher(strings.TrimPrefix(signal, "added-line:"))
	case strings.HasPrefix(signal, "pattern:"):
		return containsMatcher(strings.TrimPrefix(signal, "pattern:"))
	default:
		return containsMatcher(signal)
	}
}

func containsMatcher(literal string) Matcher {
	return func(line string) bool { return strings.Contains(line, literal) }
}

// matcherSet holds the compiled form of a signal list so per-line
// re-checks don't recompile regexes.
type matcherSet struct {
	matchers []Matcher
}

func compileSet(signals []string) matcherSet {
	set := matcherSet{matchers: make([]Matcher, 0, len(signals))}
	for _, s := range signals {
		set.matchers = append(set.matchers, CompileMatcher(s))
	}
	return set
}

func (s matcherSet) empty() bool { return len(s.matchers) == 0 }

// matchLine reports whether any compiled matcher matches the line.
// False when the set is empty.
func (s matcherSet) matchLine(line string) bool {
	for _, m := range s.matchers {
		if m(line) {
			return true
		}
	}
	return false
}

// matchAny reports whether some matcher matches some line.
func (s matcherSet) matchAny(lines []string) bool {
	for _, line := range lines {
		if s.matchLine(line) {
			return true
		}
	}
	return false
}

// AnyMatch reports whether any of the signals matches any of the lines.
// An empty signal list matches nothing.
func AnyMatch(lines []string, signals []string) bool {
	return compileSet(signals).matchAny(lines)
}

// AnyExempt reports whether any exemption pattern matches any line.
// Identical compilation to AnyMatch; an empty exempt list exempts nothing,
// and a pattern that fails to compile never exempts.
func AnyExempt(lines []string, exempt []string) bool {
	return compileSet(exempt).matchAny(lines)
}
