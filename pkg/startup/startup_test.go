package startup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStartup(maxAttempts int) *Startup {
	s := NewStartup(ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}), maxAttempts)
	s.backoffUnit = time.Millisecond
	return s
}

func TestStartup_OrderAndStop(t *testing.T) {
	var events []string
	dep := func(name string, requires ...string) Func {
		return Func{
			Name:      name,
			Requires:  requires,
			StartFunc: func(context.Context) error { events = append(events, "start "+name); return nil },
			StopFunc:  func(context.Context) error { events = append(events, "stop "+name); return nil },
		}
	}

	s := newTestStartup(1)
	s.AddDependency(dep("api", "database", "graph"))
	s.AddDependency(dep("graph"))
	s.AddDependency(dep("database"))

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, []string{"start database", "start graph", "start api"}, events)
	assert.Equal(t, StatusStarted, s.Status("api"))

	events = nil
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, []string{"stop api", "stop graph", "stop database"}, events)
	assert.Equal(t, StatusStopped, s.Status("database"))
}

func TestStartup_Retries(t *testing.T) {
	calls := 0
	s := newTestStartup(3)
	s.AddDependency(Func{Name: "flaky", StartFunc: func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}})

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, 3, calls)
}

func TestStartup_GivesUp(t *testing.T) {
	s := newTestStartup(2)
	s.AddDependency(Func{Name: "down", StartFunc: func(context.Context) error { return errors.New("unreachable") }})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Contains(t, err.Error(), "unreachable")
	assert.Equal(t, StatusFailed, s.Status("down"))
}

func TestStartup_BadGraph(t *testing.T) {
	t.Run("unknown dependency", func(t *testing.T) {
		s := newTestStartup(1)
		s.AddDependency(Func{Name: "api", Requires: []string{"missing"}})
		assert.ErrorContains(t, s.Start(context.Background()), "unknown startup dependency")
	})

	t.Run("cycle", func(t *testing.T) {
		s := newTestStartup(1)
		s.AddDependency(Func{Name: "a", Requires: []string{"b"}})
		s.AddDependency(Func{Name: "b", Requires: []string{"a"}})
		assert.ErrorContains(t, s.Start(context.Background()), "cycle")
	})
}

func TestStartup_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newTestStartup(5)
	s.backoffUnit = time.Hour
	s.AddDependency(Func{Name: "down", StartFunc: func(context.Context) error {
		cancel()
		return errors.New("unreachable")
	}})

	assert.ErrorIs(t, s.Start(ctx), context.Canceled)
}
