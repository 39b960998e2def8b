package sheet

// Store holds the committed panel state. It is the only value the rest of the
// application observes.
type Store struct {
	state     State
	listeners map[int]func(from, to State)
	next      int
}

func NewStore(initial State) *Store {
	if !initial.Valid() {
		initial = Half
	}
	return &Store{state: initial, listeners: make(map[int]func(from, to State))}
}

func (s *Store) State() State { return s.state }

// Set commits v and notifies listeners. It reports whether the state changed;
// setting the current state again is a no-op.
func (s *Store) Set(v State) bool {
	if !v.Valid() || v == s.state {
		return false
	}
	from := s.state
	s.state = v
	for _, fn := range s.listeners {
		fn(from, v)
	}
	return true
}

// Subscribe registers fn for state changes and returns its cancel func.
func (s *Store) Subscribe(fn func(from, to State)) func() {
	id := s.next
	s.next++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}
