package engine

import (
	"regexp"
	"strconv"
	"strings"
)

// FileDiff is one file's worth of hunks from a unified diff.
type FileDiff struct {
	Path  string `json:"path"`
	Hunks []Hunk `json:"hunks"`
}

// Hunk is a contiguous block of changes anchored by old/new positions.
// Only added lines are recorded; removed and context lines contribute to
// line accounting but are not retained.
type Hunk struct {
	OldStart int         `json:"oldStart"`
	OldLines int         `json:"oldLines"`
	NewStart int         `json:"newStart"`
	NewLines int         `json:"newLines"`
	Header   string      `json:"header"`
	Added    []AddedLine `json:"added"`
}

// AddedLine is a single added line with its new-file line number.
type AddedLine struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// AddedTexts returns the text of every added line in the file, in order.
func (f FileDiff) AddedTexts() []string {
	var texts []string
	for _, h := range f.Hunks {
		for _, a := range h.Added {
			texts = append(texts, a.Text)
		}
	}
	return texts
}

// parseState enumerates the diff scanner states. The scanner starts in
// stateSeeking, enters stateInFile on a "+++ b/" header, and stateInHunk
// on an "@@" header. Line numbering only happens in stateInHunk.
type parseState int

const (
	stateSeeking parseState = iota
	stateInFile
	stateInHunk
)

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// ParseDiff scans unified-diff text into per-file hunks. It never fails:
// input with no recognizable structure yields an empty or partial file
// list. CRLF input is normalized so LF and CRLF diffs parse identically.
//
// Line accounting follows the new-file side: the cursor resets to
// newStart-1 at each hunk header, advances on added and context lines,
// and holds on removed lines. Added lines are recorded with the cursor
// value after advancing, which is their line number in the new file.
func ParseDiff(diffText string) []FileDiff {
	lines := strings.Split(strings.ReplaceAll(diffText, "\r\n", "\n"), "\n")

	var files []FileDiff
	state := stateSeeking
	cursor := 0

	for _, line := range lines {
		if path, ok := fileHeader(line); ok {
			files = append(files, FileDiff{Path: path})
			state = stateInFile
			continue
		}
		if state == stateSeeking {
			continue
		}

		if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
			h := Hunk{
				OldStart: atoiOrZero(m[1]),
				OldLines: atoiOrZero(m[2]),
				NewStart: atoiOrZero(m[3]),
				NewLines: atoiOrZero(m[4]),
				Header:   line,
			}
			cursor = h.NewStart - 1
			cur := &files[len(files)-1]
			cur.Hunks = append(cur.Hunks, h)
			state = stateInHunk
			continue
		}
		if state != stateInHunk {
			continue
		}

		hunk := currentHunk(files)
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			cursor++
			hunk.Added = append(hunk.Added, AddedLine{Line: cursor, Text: line[1:]})
		case strings.HasPrefix(line, "-"):
			// Removed line: old side only, cursor holds.
		case strings.HasPrefix(line, " ") || line == "":
			cursor++
		default:
			// Inter-hunk noise ("diff --git", "index", "\ No newline").
		}
	}

	return files
}

// fileHeader matches "+++ b/<path>" and returns the path.
func fileHeader(line string) (string, bool) {
	if !strings.HasPrefix(line, "+++ b/") {
		return "", false
	}
	path := strings.TrimPrefix(line, "+++ b/")
	if path == "" {
		return "", false
	}
	return path, true
}

func currentHunk(files []FileDiff) *Hunk {
	cur := &files[len(files)-1]
	return &cur.Hunks[len(cur.Hunks)-1]
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
