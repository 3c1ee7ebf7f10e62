// Package commands wires the cdir CLI: identity inspection, trusted peer
// listing, message staging and dispatch, and inbox reading.
package commands
