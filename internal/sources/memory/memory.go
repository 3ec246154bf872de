// Package memory provides an in-memory table store that serves as both a
// TableSource and a TableSink, for tests and library callers that already
// hold their data in memory.
package memory

import (
	"context"
	"sync"

	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/sources"
	"github.com/agentstation/cgvn/pkg/table"
)

// Store holds tables by logical name.
type Store struct {
	mu     sync.RWMutex
	tables map[sources.Name]*table.Table
}

// New creates a store preloaded with tables.
func New(tables map[sources.Name]*table.Table) *Store {
	s := &Store{tables: make(map[sources.Name]*table.Table, len(tables))}
	for name, t := range tables {
		s.tables[name] = t
	}
	return s
}

// Read implements sources.TableSource.
func (s *Store) Read(ctx context.Context, name sources.Name) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	if !ok {
		return nil, errors.NewNotFoundError("table", name.String())
	}
	return t, nil
}

// Write implements sources.TableSink. A later write replaces an earlier one.
func (s *Store) Write(ctx context.Context, t *table.Table, name sources.Name) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[name] = t
	return nil
}

// Get returns the table stored under name, or nil.
func (s *Store) Get(name sources.Name) *table.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables[name]
}

// Clear removes all tables (useful for testing)
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = make(map[sources.Name]*table.Table)
}

// Len returns the number of stored tables.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables)
}
