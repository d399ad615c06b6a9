package catalog

import "sync/atomic"

// Store holds the live catalog. Reloads replace the whole catalog in one
// atomic step, so readers never see a partially updated table set.
type Store struct {
	current atomic.Pointer[Catalog]
}

func NewStore(c *Catalog) *Store {
	s := &Store{}
	s.current.Store(c)
	return s
}

func (s *Store) Current() *Catalog {
	return s.current.Load()
}

// Swap installs next and returns the catalog it replaced. A nil next is ignored.
func (s *Store) Swap(next *Catalog) *Catalog {
	if next == nil {
		return s.current.Load()
	}
	return s.current.Swap(next)
}
