// Package catalog reads candidate scenes from the scene-metadata catalog
// site.
//
// The orchestrator depends only on the Source interface; the HTTP
// implementation asks the catalog API for the scenes referenced by a page
// and for per-scene metadata. Fields are best-effort: the catalog may know
// nothing about a scene beyond its id, and that is not an error.
package catalog
