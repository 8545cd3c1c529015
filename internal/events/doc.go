// Package events fans out store-change notifications to UI listeners.
//
// The hub keeps a bounded replay buffer with monotonic sequence numbers so a
// client that reconnects can fetch everything it missed and always ends up
// consistent with the latest persisted write. Stores publish only after their
// own persistence succeeded.
package events
