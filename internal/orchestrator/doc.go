// Package orchestrator drives scenes through their batch lifecycle.
//
// A single background worker owns all status transitions: batch submissions,
// retries, and cancellations funnel through one mutex-guarded processing
// path so two runs can never interleave writes to the same scene. Every
// transition is persisted through the batch store before subscribers hear
// about it, which keeps restarts lossless.
package orchestrator
