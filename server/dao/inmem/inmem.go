package inmem

import (
	"github.com/dekarrin/lens/server/dao"
)

type store struct {
	seshes *InMemorySessionsRepository
}

// NewDatastore returns a dao.Store backed entirely by in-process maps, useful
// for development and for lensctl's test fixtures.
func NewDatastore() dao.Store {
	return &store{seshes: NewSessionsRepository()}
}

func (s *store) Sessions() dao.SessionRepository {
	return s.seshes
}

func (s *store) Close() error {
	return s.seshes.Close()
}
