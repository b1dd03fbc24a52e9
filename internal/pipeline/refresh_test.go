package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/olist-etl/internal/analytics"
	"github.com/angelmondragon/olist-etl/internal/analytics/worker"
	"github.com/angelmondragon/olist-etl/pkg/logger"
)

type scriptedRunner struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (s *scriptedRunner) Run(context.Context) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &Outcome{RunID: "run", Results: worker.NewResults()}, nil
}

func (s *scriptedRunner) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestNewRefresherValidates(t *testing.T) {
	_, err := NewRefresher(RefreshParams{Publisher: analytics.NewService(), Logger: logger.Nop()})
	require.Error(t, err)
	_, err = NewRefresher(RefreshParams{Runner: &scriptedRunner{}, Logger: logger.Nop()})
	require.Error(t, err)
	_, err = NewRefresher(RefreshParams{Runner: &scriptedRunner{}, Publisher: analytics.NewService()})
	require.Error(t, err)
}

func TestRefresherRunsOnceWithoutInterval(t *testing.T) {
	runner := &scriptedRunner{}
	published := analytics.NewService()
	r, err := NewRefresher(RefreshParams{Runner: runner, Publisher: published, Logger: logger.Nop()})
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 1, runner.count())
	assert.True(t, published.Ready())
}

func TestRefresherReturnsFirstFailureWithoutInterval(t *testing.T) {
	runner := &scriptedRunner{errs: []error{errors.New("extract failed")}}
	published := analytics.NewService()
	r, err := NewRefresher(RefreshParams{Runner: runner, Publisher: published, Logger: logger.Nop()})
	require.NoError(t, err)

	require.Error(t, r.Run(context.Background()))
	assert.False(t, published.Ready())
}

func TestRefresherKeepsRefreshingAfterFailure(t *testing.T) {
	runner := &scriptedRunner{errs: []error{errors.New("first run failed")}}
	published := analytics.NewService()
	r, err := NewRefresher(RefreshParams{Runner: runner, Publisher: published, Logger: logger.Nop(), Interval: 5 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, published.Ready, time.Second, 5*time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	assert.GreaterOrEqual(t, runner.count(), 2)
}
