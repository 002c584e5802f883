package store

// Observer is notified after every dispatch with the previous and next state.
type Observer func(prev, next AppState)

// Store owns the application state. It has a single writer: callers must
// not Dispatch from more than one goroutine.
type Store struct {
	state     AppState
	observers []Observer
}

func New(initial AppState, observers ...Observer) *Store {
	return &Store{state: initial, observers: observers}
}

func (s *Store) State() AppState {
	return s.state
}

func (s *Store) Subscribe(o Observer) {
	if o != nil {
		s.observers = append(s.observers, o)
	}
}

// Dispatch reduces a into the current state and returns the result.
func (s *Store) Dispatch(a Action) AppState {
	prev := s.state
	s.state = Reduce(prev, a)
	for _, o := range s.observers {
		if o != nil {
			o(prev, s.state)
		}
	}
	return s.state
}
