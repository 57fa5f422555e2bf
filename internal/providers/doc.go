// Package providers abstracts the external reviewers that handle
// LLM-typed rule tasks. Only the deterministic mock reviewer ships;
// real vendor integrations plug in behind the Reviewer interface.
package providers
