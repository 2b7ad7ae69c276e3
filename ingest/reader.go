// Package ingest implements the connection-level ingest loop (C5) and the
// engine frontend that spawns it per connection (C6). The wire codec and
// the transport itself are external collaborators (spec.md §1); this
// package only depends on the Source interface below.
package ingest

import (
	"io"

	"matchcore/domain"
)

// Outcome is the result of one ReadCommand call, mirroring spec.md §6's
// read_command contract.
type Outcome int

const (
	// Success means cmd was populated with the next command.
	Success Outcome = iota
	// EndOfStream means the connection closed cleanly; no more commands
	// will arrive.
	EndOfStream
	// ReadError means the read or decode failed; the worker terminates
	// this connection only.
	ReadError
)

// Source is the per-connection command stream the ingest loop consumes.
// Implementations live in package transport (or a test double); the core
// engine treats the wire format as opaque.
type Source interface {
	io.Closer

	// ReadCommand blocks for the next command. A malformed command at the
	// codec level is reported as ReadError, matching spec.md §7's
	// "Malformed command (codec-level) -> surfaced as transport error."
	ReadCommand() (domain.Command, Outcome, error)

	// Label identifies this connection for logging (e.g. remote address).
	Label() string
}
