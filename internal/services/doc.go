// Package services defines the error taxonomy shared by remote-facing
// clients and the orchestrator.
//
// Sentinel errors classify failures so the orchestrator can map them onto
// scene statuses without inspecting messages: conflicts become exists/searched,
// missing ids become structured command failures, and everything else stays
// retryable. Validation errors never leave the evaluator.
package services
