// Package batch persists scene submission batches and their per-scene
// lifecycle state in SQLite. The processing loop in the orchestrator package
// drives status transitions; this package only records them and broadcasts
// the refreshed list after each write.
package batch
