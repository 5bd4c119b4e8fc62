package logbook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/penwyp/go-ha-logbook/internal/core/card"
	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/core/constants"
	"github.com/penwyp/go-ha-logbook/internal/core/locale"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/observability/metrics"
	"github.com/penwyp/go-ha-logbook/internal/presentation/interaction"
	"github.com/penwyp/go-ha-logbook/internal/util"
)

// Orchestrator drives the card life cycle:
// Uninitialized → Configured → Loading → Rendered → Loading ... on a fixed
// timer, until the context is cancelled.
type Orchestrator struct {
	config *RunConfig

	// Core components
	registry     *card.Registry
	formatter    *locale.Provider
	clock        *util.TimeProvider
	dataLoader   *DataLoader
	refreshCtrl  *RefreshController
	stateManager *StateManager

	// UI components, nil when headless
	display  DisplayController
	keyboard InputHandler

	// Monitoring
	watcher FileMonitor

	wg sync.WaitGroup
}

// Option customizes an Orchestrator
type Option func(*Orchestrator)

// WithDisplay renders every applied timeline on d
func WithDisplay(d DisplayController) Option {
	return func(o *Orchestrator) { o.display = d }
}

// WithKeyboard handles key presses from k
func WithKeyboard(k InputHandler) Option {
	return func(o *Orchestrator) { o.keyboard = k }
}

// WithWatcher uses w for configuration change events instead of watching the card file
func WithWatcher(w FileMonitor) Option {
	return func(o *Orchestrator) { o.watcher = w }
}

// Apply sets options after construction, for collaborators that need the
// orchestrator's formatter or card. Call it before Run.
func (o *Orchestrator) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// NewOrchestrator creates a new Orchestrator instance
func NewOrchestrator(cfg *RunConfig, src Source, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	clock, err := util.NewTimeProvider(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize timezone: %w", err)
	}

	registry := card.NewRegistry()
	if err := card.RegisterBuiltins(registry); err != nil {
		return nil, err
	}

	formatter := locale.New(cfg.Language, clock.Location(), clock)
	stateManager := NewStateManager()
	dataLoader := NewDataLoader(src, cfg.HTTPTimeout)

	o := &Orchestrator{
		config:       cfg,
		registry:     registry,
		formatter:    formatter,
		clock:        clock,
		dataLoader:   dataLoader,
		refreshCtrl:  NewRefreshController(dataLoader, stateManager, formatter, clock),
		stateManager: stateManager,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Configure loads and compiles the card file. On failure the previous card,
// if any, stays active.
func (o *Orchestrator) Configure() error {
	tc, err := config.LoadTimeline(o.config.CardFile)
	if err != nil {
		return err
	}
	c, err := o.registry.New(tc)
	if err != nil {
		return err
	}

	o.refreshCtrl.SetCard(c)
	o.stateManager.MarkConfigured()
	util.LogInfo("Card configured",
		util.F("type", string(tc.Kind)),
		util.F("entities", len(tc.Entities)),
		util.F("hours_to_show", tc.HoursToShow))
	return nil
}

// RunOnce configures the card if needed and runs one refresh cycle.
func (o *Orchestrator) RunOnce(ctx context.Context) (*card.Result, error) {
	if o.stateManager.Phase() == PhaseUninitialized {
		if err := o.Configure(); err != nil {
			return nil, err
		}
	}
	result, err := o.refreshCtrl.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if result == nil {
		// a concurrent cycle won; report what is applied
		current, _ := o.stateManager.Current()
		return current, nil
	}
	return result, nil
}

// Run starts the orchestrator main loop
func (o *Orchestrator) Run(ctx context.Context) error {
	util.LogInfo("Starting logbook...")

	// Configuration errors stop here, before any loading
	if err := o.Configure(); err != nil {
		return err
	}

	defer o.Close()

	if o.display != nil {
		o.display.EnterAlternateScreen()
		defer o.display.ExitAlternateScreen()
	}

	if o.config.WatchConfig && o.watcher == nil {
		watcher, err := NewConfigWatcher(o.config.CardFile, constants.ConfigReloadDebounce)
		if err != nil {
			return fmt.Errorf("failed to start config watcher: %w", err)
		}
		o.watcher = watcher
	}

	applied, unsubscribe := o.stateManager.Subscribe()
	defer unsubscribe()

	o.updateDisplay()
	o.triggerRefresh(ctx)

	uiTicker := time.NewTicker(constants.DisplayTickInterval)
	defer uiTicker.Stop()

	dataTicker := time.NewTicker(o.config.RefreshInterval)
	defer dataTicker.Stop()

	var (
		keyEvents  <-chan interaction.KeyEvent
		fileEvents <-chan model.FileEvent
	)
	if o.keyboard != nil {
		keyEvents = o.keyboard.Events()
	}
	if o.watcher != nil {
		fileEvents = o.watcher.Events()
	}

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down logbook...")
			return nil

		case <-uiTicker.C:
			// relative dates and durations age between refreshes
			if !o.stateManager.GetInteractionState().IsPaused {
				o.updateDisplay()
			}

		case <-dataTicker.C:
			state := o.stateManager.GetInteractionState()
			if !state.IsPaused || state.ForceRefresh {
				o.triggerRefresh(ctx)
				o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
					s.ForceRefresh = false
				})
			}

		case <-applied:
			o.updateDisplay()

		case event := <-fileEvents:
			o.handleConfigChange(ctx, event)

		case keyEvent := <-keyEvents:
			if o.handleKeyboard(ctx, keyEvent) {
				return nil
			}
			o.updateDisplay()
		}
	}
}

// triggerRefresh runs a refresh cycle without blocking the loop. Cycles may
// overlap; the state manager applies only the newest result.
func (o *Orchestrator) triggerRefresh(ctx context.Context) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if _, err := o.refreshCtrl.Refresh(ctx); err != nil {
			util.LogWarn("Keeping previous timeline", util.F("error", err.Error()))
		}
	}()
}

// handleConfigChange reloads the card; an invalid file keeps the previous card.
func (o *Orchestrator) handleConfigChange(ctx context.Context, event model.FileEvent) {
	util.LogDebug("Card configuration changed",
		util.F("path", event.Path),
		util.F("op", event.Operation))

	if err := o.Configure(); err != nil {
		metrics.IncConfigReload(metrics.ResultError)
		util.LogError("Invalid card configuration, keeping previous one", util.F("error", err.Error()))
		return
	}
	metrics.IncConfigReload(metrics.ResultSuccess)
	o.triggerRefresh(ctx)
}

// handleKeyboard handles keyboard events. It returns true when exit is requested.
func (o *Orchestrator) handleKeyboard(ctx context.Context, event interaction.KeyEvent) bool {
	switch event.Type {
	case interaction.KeyChar:
		switch event.Key {
		case 'q', 'Q', 3: // 'q', 'Q', or Ctrl+C
			return true
		case 'r', 'R':
			o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
				s.ForceRefresh = true
			})
			o.triggerRefresh(ctx)
		case 'p', 'P':
			o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
				s.IsPaused = !s.IsPaused
			})
		case 'e', 'E':
			o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
				s.Expanded = !s.Expanded
			})
		}
	case interaction.KeyUp:
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			if s.ScrollOffset > 0 {
				s.ScrollOffset--
			}
		})
	case interaction.KeyDown:
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			s.ScrollOffset++
		})
	case interaction.KeyEscape:
		return true
	}
	return false
}

func (o *Orchestrator) updateDisplay() {
	if o.display == nil {
		return
	}
	result, _ := o.stateManager.Current()
	o.display.Render(result, o.stateManager.GetInteractionState())
}

// State exposes the state manager to serving layers
func (o *Orchestrator) State() *StateManager {
	return o.stateManager
}

// Cards lists the registered card types
func (o *Orchestrator) Cards() []card.Info {
	return o.registry.List()
}

// Formatter returns the locale formatter used for rendering
func (o *Orchestrator) Formatter() *locale.Provider {
	return o.formatter
}

// TimelineConfig returns the configuration of the active card
func (o *Orchestrator) TimelineConfig() *config.TimelineConfig {
	if c := o.refreshCtrl.Card(); c != nil {
		return c.Config()
	}
	return nil
}

// Close waits for in-flight refreshes and releases resources
func (o *Orchestrator) Close() error {
	o.wg.Wait()

	if o.keyboard != nil {
		if err := o.keyboard.Close(); err != nil {
			util.LogError("Failed to restore terminal", util.F("error", err.Error()))
		}
		o.keyboard = nil
	}
	if o.watcher != nil {
		if err := o.watcher.Close(); err != nil {
			return fmt.Errorf("failed to close config watcher: %w", err)
		}
		o.watcher = nil
	}
	return nil
}
