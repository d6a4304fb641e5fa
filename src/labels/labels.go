// Package labels would expose CRUD access to arbitrary scope/key/value
// annotations on database URIs (see original_source/src/labels/handle.rs
// for the reference shape: DbItemLabel, CreateDbItemLabel and a Handle
// wrapping persist.Handle). It is not implemented: labels CRUD is out of
// scope here. The type below only keeps an import-stable shape for code
// that would wire a labels.Handle alongside the other domain handles.
package labels

import "github.com/polyfloyd/trollibox/src/persist"

// Handle is an unimplemented placeholder for the labels CRUD surface.
type Handle struct {
	store *persist.Handle
}

// NewHandle keeps the constructor shape a caller would expect; it is not
// wired into cmd/trollibox because nothing in this repo needs it yet.
func NewHandle(store *persist.Handle) *Handle {
	return &Handle{store: store}
}
