package logbook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/penwyp/go-ha-logbook/internal/core/card"
	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/core/timeline"
	"github.com/penwyp/go-ha-logbook/internal/observability/metrics"
	"github.com/penwyp/go-ha-logbook/internal/util"
)

const (
	sourceState   = "state"
	sourceHistory = "history"
	sourceLogbook = "logbook"
)

// DataLoader fetches everything one refresh needs. Per entity the state,
// history and logbook lookups run concurrently; Load returns once all of
// them have finished.
type DataLoader struct {
	history HistorySource
	logs    LogSource
	states  StateSource
	timeout time.Duration
}

// NewDataLoader creates a new DataLoader instance
func NewDataLoader(src Source, timeout time.Duration) *DataLoader {
	return &DataLoader{
		history: src,
		logs:    src,
		states:  src,
		timeout: timeout,
	}
}

// Load fetches the inputs of every configured entity within the window.
// The first fetch error cancels the remaining fetches and is returned.
func (dl *DataLoader) Load(ctx context.Context, cfg *config.TimelineConfig, window timeline.Window) (map[string]card.EntityInput, error) {
	if dl.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, dl.timeout)
		defer cancel()
	}
	g, ctx := errgroup.WithContext(ctx)

	inputs := make(map[string]card.EntityInput, len(cfg.Entities))
	for _, plan := range cfg.Entities {
		inputs[plan.EntityID] = card.EntityInput{EntityID: plan.EntityID}
	}

	var mu sync.Mutex
	update := func(entityID string, apply func(in *card.EntityInput)) {
		mu.Lock()
		defer mu.Unlock()
		in := inputs[entityID]
		apply(&in)
		inputs[entityID] = in
	}

	spawn := func(ctx context.Context, source, entityID string, fetch func(ctx context.Context) error) {
		g.Go(func() error {
			start := time.Now()
			err := fetch(ctx)
			metrics.ObserveFetch(source, time.Since(start), err)
			if err == nil {
				return nil
			}

			util.LogCtx(ctx).Warn("Fetch failed",
				util.F("source", source),
				util.F("error", err.Error()))
			return fmt.Errorf("failed to fetch %s of %s: %w", source, entityID, err)
		})
	}

	for _, plan := range cfg.Entities {
		id := plan.EntityID
		entityCtx := util.ContextWithEntity(ctx, id)

		spawn(entityCtx, sourceState, id, func(ctx context.Context) error {
			state, err := dl.states.FetchState(ctx, id)
			if err != nil {
				return err
			}
			update(id, func(in *card.EntityInput) { in.State = state })
			return nil
		})

		if cfg.ShowHistory {
			spawn(entityCtx, sourceHistory, id, func(ctx context.Context) error {
				samples, err := dl.history.FetchHistory(ctx, id, window.Since, window.Until)
				if err != nil {
					return err
				}
				update(id, func(in *card.EntityInput) { in.History = samples })
				return nil
			})
		}

		if plan.CustomLogs {
			spawn(entityCtx, sourceLogbook, id, func(ctx context.Context) error {
				entries, err := dl.logs.FetchLogs(ctx, id, window.Since, window.Until)
				if err != nil {
					return err
				}
				update(id, func(in *card.EntityInput) { in.Logs = entries })
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}
