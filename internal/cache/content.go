package cache

import "io"

// Content is the result of a successful FetchFile. Exactly one of Bytes or
// Reader is meaningful, selected by Resident — the Go rendering of spec's
// InMemory | OnDisk tagged union (there is no sum type in Go; a tagged
// struct is the idiomatic substitute, and keeps the zero value harmless).
type Content struct {
	// Resident is true when the body was served from the in-memory tier
	// (Bytes is valid); false when streamed from disk (Reader is valid).
	Resident bool
	Bytes    []byte
	Reader   io.ReadCloser
}
