package gitctx

import (
	"strings"
	"testing"
)

func TestExtractFiles(t *testing.T) {
	diff := `diff --git a/main.ts b/main.ts
--- a/main.ts
+++ b/main.ts
@@ -1,3 +1,4 @@
+import { x } from './util';
diff --git a/util.ts b/util.ts
--- a/util.ts
+++ b/util.ts
@@ -5,3 +5,4 @@
+export const x = 1;
`
	files := ExtractFiles(diff)
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if files[0] != "main.ts" {
		t.Errorf("files[0] = %q, want %q", files[0], "main.ts")
	}
	if files[1] != "util.ts" {
		t.Errorf("files[1] = %q, want %q", files[1], "util.ts")
	}
}

func TestExtractFiles_Dedup(t *testing.T) {
	diff := `+++ b/main.ts
+++ b/main.ts
`
	files := ExtractFiles(diff)
	if len(files) != 1 {
		t.Errorf("got %d files, want 1 (should dedup)", len(files))
	}
}

func TestFilterExcluded(t *testing.T) {
	diff := `diff --git a/main.ts b/main.ts
--- a/main.ts
+++ b/main.ts
@@ -1,3 +1,4 @@
+import { x } from './util';
diff --git a/vendor/lib.ts b/vendor/lib.ts
--- a/vendor/lib.ts
+++ b/vendor/lib.ts
@@ -1,3 +1,4 @@
+export {};
`
	result := FilterExcluded(diff, []string{"vendor/**"})
	if strings.Contains(result, "vendor/lib.ts") {
		t.Error("vendor/lib.ts should be excluded")
	}
	if !strings.Contains(result, "main.ts") {
		t.Error("main.ts should be kept")
	}
}

func TestMatchesAny(t *testing.T) {
	tests := []struct {
		path     string
		patterns []string
		want     bool
	}{
		{"vendor/lib.go", []string{"vendor/**"}, true},
		{"main.go", []string{"vendor/**"}, false},
		{"foo.gen.go", []string{"**/*.gen.go"}, true},
		{"pkg/foo.gen.go", []string{"**/*.gen.go"}, true},
		{"dist/bundle.js", []string{"**/dist/**"}, true},
		{"src/a/dist/bundle.js", []string{"**/dist/**"}, true},
		{"main.go", []string{"*.go"}, true},
		{"pkg/main.go", []string{"*.go"}, false}, // * does not cross segments
	}
	for _, tt := range tests {
		got := MatchesAny(tt.path, tt.patterns)
		if got != tt.want {
			t.Errorf("MatchesAny(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.want)
		}
	}
}

func TestSplitDiffSections(t *testing.T) {
	diff := `diff --git a/a.ts b/a.ts
--- a/a.ts
+++ b/a.ts
@@ -1,3 +1,4 @@
+line1
diff --git a/b.ts b/b.ts
--- a/b.ts
+++ b/b.ts
@@ -1,3 +1,4 @@
+line2
`
	sections := splitDiffSections(diff)
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	if !strings.Contains(sections[0], "a.ts") {
		t.Error("section 0 should contain a.ts")
	}
	if !strings.Contains(sections[1], "b.ts") {
		t.Error("section 1 should contain b.ts")
	}
}

func TestFromFile(t *testing.T) {
	diff := `diff --git a/a.ts b/a.ts
--- a/a.ts
+++ b/a.ts
@@ -1,1 +1,2 @@
 keep
+added
`
	result, err := FromFile(diff, DiffOptions{})
	if err != nil {
		t.Fatalf("FromFile error: %v", err)
	}
	if result.Mode != "file" {
		t.Errorf("Mode = %q, want %q", result.Mode, "file")
	}
	if len(result.Files) != 1 || result.Files[0] != "a.ts" {
		t.Errorf("Files = %v", result.Files)
	}
}

func TestFromFile_Truncation(t *testing.T) {
	diff := strings.Repeat("x", 100)
	result, err := FromFile(diff, DiffOptions{MaxDiffBytes: 10})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Diff, "diff truncated") {
		t.Error("oversized diff should carry a truncation marker")
	}
}

func TestFromFile_ExcludeFilter(t *testing.T) {
	diff := `diff --git a/keep.ts b/keep.ts
+++ b/keep.ts
@@ -0,0 +1,1 @@
+a
diff --git a/node_modules/x.js b/node_modules/x.js
+++ b/node_modules/x.js
@@ -0,0 +1,1 @@
+b
`
	result, err := FromFile(diff, DiffOptions{Exclude: []string{"**/node_modules/**"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Files) != 1 || result.Files[0] != "keep.ts" {
		t.Errorf("Files = %v, want [keep.ts]", result.Files)
	}
	if strings.Contains(result.Diff, "node_modules") {
		t.Error("excluded section should be removed from the diff text")
	}
}
