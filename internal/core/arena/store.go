package arena

// Store keeps values keyed by handle in insertion order. Ordered iteration
// keeps serialized rosters stable from one tick to the next.
type Store[T any] struct {
	index map[Handle]int
	order []Handle
	data  []*T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		index: make(map[Handle]int, 16),
	}
}

// Set inserts v at the end, or replaces the value in place when h is present.
func (s *Store[T]) Set(h Handle, v *T) {
	if i, ok := s.index[h]; ok {
		s.data[i] = v
		return
	}
	s.index[h] = len(s.order)
	s.order = append(s.order, h)
	s.data = append(s.data, v)
}

func (s *Store[T]) Get(h Handle) (*T, bool) {
	i, ok := s.index[h]
	if !ok {
		return nil, false
	}
	return s.data[i], true
}

// Remove deletes h and returns its value, preserving the order of the rest.
func (s *Store[T]) Remove(h Handle) (*T, bool) {
	i, ok := s.index[h]
	if !ok {
		return nil, false
	}
	v := s.data[i]
	delete(s.index, h)
	s.order = append(s.order[:i], s.order[i+1:]...)
	s.data = append(s.data[:i], s.data[i+1:]...)
	for j := i; j < len(s.order); j++ {
		s.index[s.order[j]] = j
	}
	return v, true
}

func (s *Store[T]) Len() int {
	return len(s.order)
}

// Each visits values in insertion order. fn must not add or remove entries;
// collect handles first when mutation is needed.
func (s *Store[T]) Each(fn func(Handle, *T)) {
	for i, h := range s.order {
		fn(h, s.data[i])
	}
}

// Handles returns a copy of the live handles in insertion order.
func (s *Store[T]) Handles() []Handle {
	out := make([]Handle, len(s.order))
	copy(out, s.order)
	return out
}
