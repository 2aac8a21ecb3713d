// Package platform contains OS integration and filesystem glue for the fetch
// pipeline: transcoding-tool location per operating system, output path
// construction and sanitization, per-path locking, collection reference
// detection and native playlist enumeration.
package platform
