// Package notifications delivers batch milestones via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled or unconfigured. Batch processing depends only on the small
// Service interface, so alternative transports slot in without touching the
// orchestrator.
package notifications
