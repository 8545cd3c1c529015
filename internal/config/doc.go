// Package config loads, normalizes, and validates reelgate configuration.
//
// Configuration lives in a TOML file (default ~/.config/reelgate/config.toml)
// and is decoded over a fully-populated Default() value, so absent keys keep
// their defaults. Load expands ~ in path fields and rejects unusable values
// before the daemon or CLI touches any store.
package config
