// Package sources defines the data-source and data-sink interfaces the
// pipeline consumes and produces, the logical table names that flow
// through them, and the named column mapping that turns raw input tables
// into the canonical schemas the pipeline expects.
//
// Example usage:
//
//	router := sources.NewRouter()
//	router.Set(sources.Registry, registryFile)
//	router.Set(sources.Governance, governanceFile)
//	router.Set(sources.Equity, equityFile)
//
//	t, err := router.Read(ctx, sources.Governance)
package sources

import (
	"context"
	"sort"
	"sync"

	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/table"
)

// Name is the logical name of a table.
type Name string

// String returns the string representation of a table name
func (n Name) String() string {
	return string(n)
}

// Logical table names.
const (
	Registry   Name = "registry"
	Governance Name = "governance"
	Equity     Name = "equity"
	Output     Name = "output"
)

// Inputs lists the input tables in the order the pipeline reads them.
var Inputs = []Name{Registry, Governance, Equity}

// TableSource reads a table by logical name.
type TableSource interface {
	Read(ctx context.Context, name Name) (*table.Table, error)
}

// TableSink writes a table under a logical name.
type TableSink interface {
	Write(ctx context.Context, t *table.Table, name Name) error
}

// Router is a thread-safe TableSource that delegates each logical name to
// its own backing source.
type Router struct {
	mu      sync.RWMutex
	sources map[Name]TableSource
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{sources: make(map[Name]TableSource)}
}

// Set routes name to src.
func (r *Router) Set(name Name, src TableSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[name] = src
}

// Get returns the source routed for name.
func (r *Router) Get(name Name) (TableSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[name]
	return src, ok
}

// Names returns the routed names in sorted order.
func (r *Router) Names() []Name {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]Name, 0, len(r.sources))
	for n := range r.sources {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Read implements TableSource.
func (r *Router) Read(ctx context.Context, name Name) (*table.Table, error) {
	src, ok := r.Get(name)
	if !ok {
		return nil, errors.NewNotFoundError("table source", name.String())
	}
	return src.Read(ctx, name)
}

// Sinks fans a write out to several sinks in order, stopping at the first
// failure.
type Sinks []TableSink

// Write implements TableSink.
func (s Sinks) Write(ctx context.Context, t *table.Table, name Name) error {
	for _, sink := range s {
		if err := sink.Write(ctx, t, name); err != nil {
			return err
		}
	}
	return nil
}
