package app

import "fmt"

// PersistenceReadError wraps a failed or unparseable hydration read. The
// store recovers by starting from an empty cart.
type PersistenceReadError struct {
	Key string
	Err error
}

func (e *PersistenceReadError) Error() string {
	return fmt.Sprintf("cart: read %q: %v", e.Key, e.Err)
}

func (e *PersistenceReadError) Unwrap() error { return e.Err }

// PersistenceWriteError wraps a failed save. In-memory state is kept and
// the next successful save overwrites storage.
type PersistenceWriteError struct {
	Key string
	Err error
}

func (e *PersistenceWriteError) Error() string {
	return fmt.Sprintf("cart: write %q: %v", e.Key, e.Err)
}

func (e *PersistenceWriteError) Unwrap() error { return e.Err }
