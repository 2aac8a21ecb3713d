// Package history keeps a sqlite ledger of fetch outcomes so the CLI can
// list what was fetched, where it landed, and why something failed.
package history
