// Package baseline persists accepted finding fingerprints between runs.
//
// A baseline is a per-repository set of fingerprints. Findings whose
// fingerprints appear in the baseline are suppressed from subsequent
// reports, so teams can adopt new rules without drowning in pre-existing
// debt. Baselines live in the platform cache directory keyed by the
// repository root path.
package baseline
