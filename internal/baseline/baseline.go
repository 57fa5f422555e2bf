package baseline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/dshills/diffgate/internal/engine"
)

// Store holds the set of accepted finding fingerprints for a repository.
type Store struct {
	dir     string
	enabled bool
}

// fileFormat is the on-disk shape of a baseline.
type fileFormat struct {
	SavedAt      time.Time `json:"savedAt"`
	Fingerprints []string  `json:"fingerprints"`
}

// New creates a Store. If dir is empty, the platform cache directory is used.
func New(enabled bool, dir string) (*Store, error) {
	if !enabled {
		return &Store{enabled: false}, nil
	}
	if dir == "" {
		d, err := defaultBaselineDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating baseline directory: %w", err)
	}
	return &Store{dir: dir, enabled: true}, nil
}

// Load reads the saved fingerprint set for the given repo key.
// A missing baseline is an empty set, not an error.
func (s *Store) Load(repoKey string) (map[string]bool, error) {
	set := make(map[string]bool)
	if !s.enabled {
		return set, nil
	}
	data, err := os.ReadFile(s.path(repoKey))
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return nil, fmt.Errorf("reading baseline: %w", err)
	}
	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parsing baseline: %w", err)
	}
	for _, fp := range ff.Fingerprints {
		set[fp] = true
	}
	return set, nil
}

// Save records the fingerprints of the given findings as the new baseline.
func (s *Store) Save(repoKey string, findings []engine.Finding) error {
	if !s.enabled {
		return nil
	}
	fps := make([]string, 0, len(findings))
	seen := make(map[string]bool)
	for _, f := range findings {
		if f.Fingerprint == "" || seen[f.Fingerprint] {
			continue
		}
		seen[f.Fingerprint] = true
		fps = append(fps, f.Fingerprint)
	}
	sort.Strings(fps)
	ff := fileFormat{SavedAt: time.Now(), Fingerprints: fps}
	data, err := json.MarshalIndent(ff, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling baseline: %w", err)
	}
	return os.WriteFile(s.path(repoKey), data, 0o644)
}

// Filter returns the findings whose fingerprints are not in the baseline set.
func Filter(findings []engine.Finding, baseline map[string]bool) []engine.Finding {
	if len(baseline) == 0 {
		return findings
	}
	kept := make([]engine.Finding, 0, len(findings))
	for _, f := range findings {
		if !baseline[f.Fingerprint] {
			kept = append(kept, f)
		}
	}
	return kept
}

// Clear removes the saved baseline for the given repo key.
func (s *Store) Clear(repoKey string) error {
	if !s.enabled {
		return nil
	}
	err := os.Remove(s.path(repoKey))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing baseline: %w", err)
	}
	return nil
}

// Stats describes a saved baseline.
type Stats struct {
	Path         string    `json:"path"`
	Fingerprints int       `json:"fingerprints"`
	SavedAt      time.Time `json:"savedAt,omitempty"`
}

// GetStats reports on the saved baseline for the given repo key.
func (s *Store) GetStats(repoKey string) (Stats, error) {
	stats := Stats{Path: s.path(repoKey)}
	if !s.enabled {
		return stats, nil
	}
	data, err := os.ReadFile(s.path(repoKey))
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("reading baseline: %w", err)
	}
	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return stats, fmt.Errorf("parsing baseline: %w", err)
	}
	stats.Fingerprints = len(ff.Fingerprints)
	stats.SavedAt = ff.SavedAt
	return stats, nil
}

// Dir returns the baseline directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Enabled returns whether the baseline store is active.
func (s *Store) Enabled() bool {
	return s.enabled
}

func (s *Store) path(repoKey string) string {
	if repoKey == "" {
		repoKey = "default"
	}
	return filepath.Join(s.dir, sanitize(repoKey)+".json")
}

// sanitize turns a repo key (usually an absolute path) into a filename.
func sanitize(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

func defaultBaselineDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "diffgate"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "diffgate"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "diffgate", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "diffgate", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "diffgate"), nil
	}
}
