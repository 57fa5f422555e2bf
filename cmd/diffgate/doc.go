// Diffgate is a deterministic CLI for analyzing code changes against
// declarative rules and import boundaries.
//
// It checks unstaged, staged, commit, range, and pre-captured diffs,
// emitting structured findings with deterministic exit codes suitable for
// CI gating and git hooks.
//
// Usage:
//
//	diffgate check unstaged               # check working tree changes
//	diffgate check staged                 # check staged changes
//	diffgate check commit <sha>           # check a specific commit
//	diffgate check range origin/main..HEAD  # check a revision range
//	diffgate check file change.diff       # check a saved unified diff
//	diffgate rules lint --rules rules.json  # validate a rules file
//	diffgate baseline save                # accept current findings
//
// See https://github.com/dshills/diffgate for full documentation.
package main
