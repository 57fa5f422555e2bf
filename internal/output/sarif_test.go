package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/dshills/diffgate/internal/engine"
)

func TestSARIFWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&SARIFWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("output is not valid SARIF JSON: %v", err)
	}
	if log.Version != "2.1.0" {
		t.Errorf("version = %q", log.Version)
	}
	if len(log.Runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(log.Runs))
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "diffgate" {
		t.Errorf("driver name = %q", run.Tool.Driver.Name)
	}
	if len(run.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(run.Results))
	}
	if len(run.Tool.Driver.Rules) != 2 {
		t.Errorf("got %d rules, want 2", len(run.Tool.Driver.Rules))
	}
}

func TestSARIFWriter_SeverityLevels(t *testing.T) {
	cases := map[engine.Severity]string{
		engine.SeverityCritical: "error",
		engine.SeverityMajor:    "error",
		engine.SeverityMinor:    "warning",
		engine.SeverityInfo:     "note",
	}
	for sev, want := range cases {
		if got := severityToLevel(sev); got != want {
			t.Errorf("severityToLevel(%q) = %q, want %q", sev, got, want)
		}
	}
}

func TestSARIFWriter_Regions(t *testing.T) {
	var buf bytes.Buffer
	if err := (&SARIFWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatal(err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatal(err)
	}
	result := log.Runs[0].Results[0]
	region := result.Locations[0].PhysicalLocation.Region
	if region.StartLine != 2 || region.EndLine != 2 {
		t.Errorf("region = %+v, want lines 2-2", region)
	}
	if result.PartialFingerprints["diffgate/v1"] == "" {
		t.Error("result should carry the finding fingerprint")
	}
}

func TestLocatorLine(t *testing.T) {
	cases := map[string]int{
		"L42":              42,
		"L1":               1,
		"HUNK:@@ -1 +1 @@": 1,
		"":                 1,
		"Lx":               1,
	}
	for in, want := range cases {
		if got := locatorLine(in); got != want {
			t.Errorf("locatorLine(%q) = %d, want %d", in, got, want)
		}
	}
}
