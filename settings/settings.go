// Package settings is a small keyed settings table the interpreter
// carries alongside its language state, grounded on the teacher's
// Environment settings map (object.Environment keeps an analogous
// string-keyed table for exactly this kind of ambient, non-variable
// state).
package settings

// Tracing is the TRON/TROFF flag: when set, the interpreter echoes
// each executed line number to the Screen before running it.
const Tracing = "tracing"

// Store is a small boolean settings table.
type Store struct {
	flags map[string]bool
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{flags: map[string]bool{}}
}

// Set turns key on or off.
func (s *Store) Set(key string, on bool) { s.flags[key] = on }

// Bool reports whether key is currently on.
func (s *Store) Bool(key string) bool { return s.flags[key] }
