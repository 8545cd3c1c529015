// Package daemon wires the stores, orchestrator, notifier, and servers into
// the long-running reelgated process and enforces single-instance execution
// through a lock file.
package daemon
