// Package redact scrubs secrets from snippets before they leave the process.
//
// Static findings quote lines verbatim and stay local, but LLM task
// snippets are destined for an external reviewer, so they pass through
// the secret patterns and the path policy first.
package redact
