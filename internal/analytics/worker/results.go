package worker

import (
	"fmt"
	"sort"
	"sync"

	"github.com/angelmondragon/olist-etl/internal/analytics/types"
	"github.com/angelmondragon/olist-etl/pkg/enums"
	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
)

// Results holds at most one table per query name.
type Results struct {
	mu     sync.RWMutex
	tables map[enums.QueryName]types.Table
}

func NewResults() *Results {
	return &Results{tables: make(map[enums.QueryName]types.Table)}
}

// Put stores table under its own name. A second table for the same name is a
// conflict and leaves the first in place.
func (r *Results) Put(table types.Table) error {
	if table == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "nil result table")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	name := table.Name()
	if _, exists := r.tables[name]; exists {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("result %q already registered", name))
	}
	r.tables[name] = table
	return nil
}

func (r *Results) Get(name enums.QueryName) (types.Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	table, ok := r.tables[name]
	return table, ok
}

// Names returns the registered names in ascending order.
func (r *Results) Names() []enums.QueryName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]enums.QueryName, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func (r *Results) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// Tables returns every table ordered by name.
func (r *Results) Tables() []types.Table {
	names := r.Names()
	out := make([]types.Table, 0, len(names))
	for _, name := range names {
		if table, ok := r.Get(name); ok {
			out = append(out, table)
		}
	}
	return out
}
