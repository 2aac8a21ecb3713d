// Package model defines the records exchanged between the fetch pipeline and
// its callers: search results, fetch requests, stage-tagged outcomes and
// collection summaries. Values are created per call and never persisted by
// the core.
package model
