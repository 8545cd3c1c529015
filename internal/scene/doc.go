// Package scene defines the normalized scene metadata shape the filter
// evaluator consumes. Both catalog-page scrapes and media-server lookups are
// mapped into this one shape before any rule is applied.
package scene
