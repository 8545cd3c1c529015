// Package api defines the transport-friendly views shared by the HTTP
// status endpoints and the IPC command surface, plus the conversions from
// the internal models.
package api
