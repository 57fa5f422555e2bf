package baseline

import (
	"testing"

	"github.com/dshills/diffgate/internal/engine"
)

func testFindings() []engine.Finding {
	return []engine.Finding{
		engine.BuildFinding("r1", "style", engine.SeverityMinor, "a.ts", "L1", []string{"x"}, "", ""),
		engine.BuildFinding("r2", "arch", engine.SeverityCritical, "b.ts", "L2", []string{"y"}, "", ""),
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := New(true, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	findings := testFindings()
	if err := store.Save("/repo/root", findings); err != nil {
		t.Fatal(err)
	}
	set, err := store.Load("/repo/root")
	if err != nil {
		t.Fatal(err)
	}
	if len(set) != 2 {
		t.Fatalf("got %d fingerprints, want 2", len(set))
	}
	for _, f := range findings {
		if !set[f.Fingerprint] {
			t.Errorf("fingerprint %s missing from loaded set", f.Fingerprint)
		}
	}
}

func TestLoad_Missing(t *testing.T) {
	store, err := New(true, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	set, err := store.Load("/never/saved")
	if err != nil {
		t.Fatalf("missing baseline should not error: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("missing baseline should be empty, got %d entries", len(set))
	}
}

func TestFilter(t *testing.T) {
	findings := testFindings()
	set := map[string]bool{findings[0].Fingerprint: true}
	kept := Filter(findings, set)
	if len(kept) != 1 {
		t.Fatalf("got %d findings after filter, want 1", len(kept))
	}
	if kept[0].Rule != "r2" {
		t.Errorf("kept wrong finding: %q", kept[0].Rule)
	}
}

func TestFilter_EmptyBaseline(t *testing.T) {
	findings := testFindings()
	kept := Filter(findings, nil)
	if len(kept) != len(findings) {
		t.Errorf("empty baseline should keep all findings")
	}
}

func TestClear(t *testing.T) {
	store, err := New(true, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save("key", testFindings()); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear("key"); err != nil {
		t.Fatal(err)
	}
	set, err := store.Load("key")
	if err != nil {
		t.Fatal(err)
	}
	if len(set) != 0 {
		t.Error("cleared baseline should be empty")
	}
	// Clearing again is a no-op.
	if err := store.Clear("key"); err != nil {
		t.Errorf("double clear should not error: %v", err)
	}
}

func TestDisabledStore(t *testing.T) {
	store, err := New(false, "")
	if err != nil {
		t.Fatal(err)
	}
	if store.Enabled() {
		t.Error("store should report disabled")
	}
	if err := store.Save("k", testFindings()); err != nil {
		t.Errorf("disabled save should be a no-op: %v", err)
	}
	set, err := store.Load("k")
	if err != nil || len(set) != 0 {
		t.Errorf("disabled load should yield empty set: (%v, %v)", set, err)
	}
}

func TestGetStats(t *testing.T) {
	store, err := New(true, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save("k", testFindings()); err != nil {
		t.Fatal(err)
	}
	stats, err := store.GetStats("k")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Fingerprints != 2 {
		t.Errorf("stats.Fingerprints = %d, want 2", stats.Fingerprints)
	}
	if stats.SavedAt.IsZero() {
		t.Error("stats.SavedAt should be set")
	}
}

func TestSanitize(t *testing.T) {
	if got := sanitize("/home/user/my-repo"); got != "_home_user_my-repo" {
		t.Errorf("sanitize = %q", got)
	}
}
