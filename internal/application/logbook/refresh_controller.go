package logbook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/penwyp/go-ha-logbook/internal/core/card"
	"github.com/penwyp/go-ha-logbook/internal/core/locale"
	"github.com/penwyp/go-ha-logbook/internal/core/timeline"
	"github.com/penwyp/go-ha-logbook/internal/observability/metrics"
	"github.com/penwyp/go-ha-logbook/internal/util"
)

// ErrNotConfigured is returned when a refresh runs before a card is configured.
var ErrNotConfigured = errors.New("no card configured")

// RefreshController runs refresh cycles: fetch, pipeline, apply.
// Every cycle takes a monotonically increasing token so that cycles finishing
// out of order never overwrite a newer timeline.
type RefreshController struct {
	dataLoader   *DataLoader
	stateManager *StateManager
	formatter    locale.Formatter
	clock        util.Clock

	mu     sync.RWMutex
	card   card.Card
	tokens atomic.Uint64
}

// NewRefreshController creates a new RefreshController instance
func NewRefreshController(dataLoader *DataLoader, stateManager *StateManager, formatter locale.Formatter, clock util.Clock) *RefreshController {
	return &RefreshController{
		dataLoader:   dataLoader,
		stateManager: stateManager,
		formatter:    formatter,
		clock:        clock,
	}
}

// SetCard replaces the card used by the next cycles
func (rc *RefreshController) SetCard(c card.Card) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.card = c
}

// Card returns the active card
func (rc *RefreshController) Card() card.Card {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.card
}

// NextToken issues the request token of a new cycle
func (rc *RefreshController) NextToken() uint64 {
	return rc.tokens.Add(1)
}

// Refresh runs one cycle. It returns the applied result, or nil when a newer
// cycle already finished first.
func (rc *RefreshController) Refresh(ctx context.Context) (*card.Result, error) {
	c := rc.Card()
	if c == nil {
		return nil, ErrNotConfigured
	}
	return rc.run(ctx, c, rc.NextToken())
}

func (rc *RefreshController) run(ctx context.Context, c card.Card, token uint64) (*card.Result, error) {
	start := time.Now()
	ctx = util.ContextWithRefreshID(ctx, uuid.NewString())
	log := util.LogCtx(ctx)

	cfg := c.Config()
	window := timeline.LookbackWindow(rc.clock.Now(), cfg.Lookback())

	log.Debug("Refresh started",
		util.F("token", token),
		util.F("entities", len(cfg.Entities)),
		util.F("since", window.Since.Format(time.RFC3339)))

	rc.stateManager.BeginLoading("Refreshing data...")

	inputs, err := rc.dataLoader.Load(ctx, cfg, window)
	if err != nil {
		rc.stateManager.Fail(token, err)
		metrics.ObserveRefresh(metrics.ResultError, time.Since(start))
		log.Error("Refresh failed", util.F("error", err.Error()))
		return nil, fmt.Errorf("refresh failed: %w", err)
	}

	result := c.Render(inputs, rc.formatter, rc.clock)

	if !rc.stateManager.Apply(token, result) {
		metrics.ObserveRefresh(metrics.ResultStale, time.Since(start))
		log.Debug("Discarded stale refresh result",
			util.F("token", token),
			util.F("applied_token", rc.stateManager.LastToken()))
		return nil, nil
	}

	metrics.ObserveRefresh(metrics.ResultSuccess, time.Since(start))
	metrics.SetTimeline(len(result.Items), len(result.Missing))
	if len(result.Missing) > 0 {
		log.Warn("Entities not found", util.F("missing", result.Missing))
	}
	log.Info("Refresh completed",
		util.F("items", len(result.Items)),
		util.F("duration_ms", time.Since(start).Milliseconds()))

	return &result, nil
}
