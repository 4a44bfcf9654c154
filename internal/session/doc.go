// Package session runs one participant's side of a replicated game
// session. The host participant owns the canonical state and is the only
// writer; every other participant holds a projected replica that is
// replaced wholesale on each sync.
//
// Join performs the setup handshake over a transport and returns either a
// host or a peer runtime depending on the context the table assigns. Both
// satisfy Runtime, so callers stay oblivious to which side they landed on.
package session
