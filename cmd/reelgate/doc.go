// Command reelgate is the CLI front end for the reelgate daemon. It talks to
// a running daemon over a Unix domain socket and manages filter rules, batch
// submissions, and daemon lifecycle.
package main
