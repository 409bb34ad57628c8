package store

import "errors"

var (
	// ErrNotFound is returned by single-row lookups when no record has the
	// given id. Both adapters return it so callers can match with errors.Is
	// regardless of which backend served the call.
	ErrNotFound = errors.New("record not found")

	// ErrUnavailable means the backing store could not complete the call
	// (disk failure locally, network failure remotely). The caller may
	// retry; the router never falls back to the other backend.
	ErrUnavailable = errors.New("store unavailable")

	// ErrUnauthenticated is returned by the remote adapter when it is
	// invoked without a user scope.
	ErrUnauthenticated = errors.New("no authenticated session")

	// ErrConflict is returned when a delete would orphan records that
	// reference the target, such as removing a catalog item that still
	// appears on a checklist.
	ErrConflict = errors.New("record still referenced")
)
