// Package event canonicalizes earnings events and merges them into the
// stored collection.
//
// The collection holds at most one event per (symbol, date) and is kept in
// ascending date order. Events are only ever appended; nothing here edits or
// removes a stored event.
package event

import "errors"

// ErrConflictRetriesExhausted is returned when every optimistic write lost
// to a concurrent writer.
var ErrConflictRetriesExhausted = errors.New("event collection kept changing during write")
