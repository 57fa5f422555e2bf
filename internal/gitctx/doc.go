// Package gitctx gathers unified diffs and repository metadata from git.
//
// It shells out to the git binary, so a working git installation and a
// repository are required for the staged/unstaged/commit/range modes.
// The file mode wraps a pre-captured diff and needs neither.
package gitctx
