// Package store is the persistence gateway: typed create/read/update
// operations over Parth's entities. It carries no business logic; expected
// conditions (missing rows, bad input) surface as sentinel errors so
// callers can pattern-match instead of catching broad failures.
package store

import "errors"

// ErrNotFound reports that the requested row does not exist (or is not
// visible to the requesting account).
var ErrNotFound = errors.New("store: not found")

// ErrInvalid reports input that violates an enum or shape constraint.
var ErrInvalid = errors.New("store: invalid input")
