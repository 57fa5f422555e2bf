// Package engine contains the deterministic diff analysis core.
//
// It parses unified-diff text into per-file hunks with accurate new-file
// line numbers, derives flattened matching constraints from a declarative
// rules document, evaluates signal and exemption patterns against added
// lines, checks ESM import edges against forbidden boundary globs, and
// emits normalized findings with content-stable SHA-1 fingerprints used
// for cross-run deduplication.
//
// Analyze is a pure function of its three inputs: identical diff text,
// rules, and boundaries always produce byte-identical output. The engine
// performs no I/O, holds no state between calls, and never fails on
// malformed input — missing structure degrades to fewer findings, never
// to an error. Run metadata (run ID, timing) is stamped by the caller via
// BuildReport so the analysis itself stays reproducible.
package engine
