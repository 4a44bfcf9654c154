// Package engine defines the pluggable state-machine contract a table
// executes: a game definition with an initial-state constructor, named move
// handlers, optional phases with enter/exit hooks, and per-player view
// projection.
//
// The engine is deterministic and replay-safe: handlers run one at a time
// against a working copy of the state, phase transitions settle through a
// bounded fixed-point loop before the result is committed, and a handler
// that panics leaves the previous snapshot untouched.
package engine
