// Package rules owns the user-defined filter rules and their evaluation.
//
// Rules are an ordered list: evaluation walks them in stored sequence and the
// first failing rule decides the outcome. The store persists every mutation
// to SQLite before broadcasting the full list, and migrates the legacy
// four-category filter format on first open.
package rules
