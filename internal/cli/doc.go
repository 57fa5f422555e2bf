// Package cli implements the diffgate command-line interface.
//
// Commands map exit codes deterministically: 0 success, 1 findings at or
// above the fail-on threshold, 2 usage error, 4 runtime error.
package cli
