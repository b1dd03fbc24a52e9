package analytics

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/angelmondragon/olist-etl/internal/analytics/types"
	"github.com/angelmondragon/olist-etl/pkg/enums"
	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
)

// Registry is the read view of a finished pipeline run.
type Registry interface {
	Get(name enums.QueryName) (types.Table, bool)
	Names() []enums.QueryName
}

// Service serves published results to readers.
type Service interface {
	// Publish replaces the served results with reg.
	Publish(reg Registry)
	// Ready reports whether a run has been published.
	Ready() bool
	Names(ctx context.Context) ([]enums.QueryName, error)
	Result(ctx context.Context, name string) (types.Table, error)
}

type service struct {
	current atomic.Pointer[published]
}

type published struct {
	reg Registry
}

// NewService builds a service with nothing published yet.
func NewService() Service {
	return &service{}
}

func (s *service) Publish(reg Registry) {
	if reg == nil {
		s.current.Store(nil)
		return
	}
	s.current.Store(&published{reg: reg})
}

func (s *service) Ready() bool {
	return s.current.Load() != nil
}

func (s *service) Names(ctx context.Context) ([]enums.QueryName, error) {
	reg, err := s.registry()
	if err != nil {
		return nil, err
	}
	return reg.Names(), nil
}

func (s *service) Result(ctx context.Context, name string) (types.Table, error) {
	queryName, err := enums.ParseQueryName(name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, fmt.Sprintf("unknown result %q", name))
	}
	reg, err := s.registry()
	if err != nil {
		return nil, err
	}
	table, ok := reg.Get(queryName)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("result %q not available", name))
	}
	return table, nil
}

func (s *service) registry() (Registry, error) {
	current := s.current.Load()
	if current == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pipeline results not ready")
	}
	return current.reg, nil
}
