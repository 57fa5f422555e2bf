// Package output renders analysis reports as text, JSON, markdown, or SARIF.
package output
