package logbook

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-ha-logbook/internal/core/card"
	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/presentation/interaction"
)

type recordingDisplay struct {
	mu       sync.Mutex
	entered  bool
	exited   bool
	rendered []*card.Result
}

func (d *recordingDisplay) EnterAlternateScreen() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entered = true
}

func (d *recordingDisplay) ExitAlternateScreen() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.exited = true
}

func (d *recordingDisplay) Render(result *card.Result, state model.InteractionState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rendered = append(d.rendered, result)
}

func (d *recordingDisplay) lastRendered() *card.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.rendered) - 1; i >= 0; i-- {
		if d.rendered[i] != nil {
			return d.rendered[i]
		}
	}
	return nil
}

type scriptedKeys struct {
	ch     chan interaction.KeyEvent
	closed bool
}

func (k *scriptedKeys) Events() <-chan interaction.KeyEvent { return k.ch }

func (k *scriptedKeys) Close() error {
	k.closed = true
	return nil
}

type manualWatcher struct {
	ch chan model.FileEvent
}

func (w *manualWatcher) Events() <-chan model.FileEvent { return w.ch }
func (w *manualWatcher) Close() error                    { return nil }

func newTestOrchestrator(t *testing.T, cardYAML string, opts ...Option) (*Orchestrator, string) {
	t.Helper()
	path := writeCard(t, t.TempDir(), cardYAML)
	o, err := NewOrchestrator(&RunConfig{
		CardFile:        path,
		HistoryFile:     "recorded.json",
		Timezone:        "UTC",
		RefreshInterval: time.Hour,
	}, kitchenSource(), opts...)
	require.NoError(t, err)
	return o, path
}

func TestNewOrchestrator_InvalidConfig(t *testing.T) {
	_, err := NewOrchestrator(&RunConfig{}, kitchenSource())
	assert.Error(t, err)

	_, err = NewOrchestrator(&RunConfig{CardFile: "card.yaml", HAURL: "http://ha", Timezone: "Mars/Base"}, kitchenSource())
	assert.Error(t, err)
}

func TestOrchestrator_RunOnce(t *testing.T) {
	o, _ := newTestOrchestrator(t, kitchenCard)

	res, err := o.RunOnce(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "Kitchen History", res.Title)
	assert.Len(t, res.Items, 3)
	assert.Equal(t, PhaseRendered, o.State().Phase())
	assert.Equal(t, config.KindSingle, o.TimelineConfig().Kind)
	assert.Len(t, o.Cards(), 2)
	assert.Equal(t, "en", o.Formatter().Language())
}

func TestOrchestrator_RunOnceInvalidCard(t *testing.T) {
	o, _ := newTestOrchestrator(t, "type: custom:logbook-card\n")

	_, err := o.RunOnce(context.Background())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Equal(t, PhaseUninitialized, o.State().Phase())
}

func TestOrchestrator_ReloadKeepsPreviousCard(t *testing.T) {
	o, path := newTestOrchestrator(t, kitchenCard)
	require.NoError(t, o.Configure())

	require.NoError(t, os.WriteFile(path, []byte("type: custom:multiple-logbook-card\n"), 0o644))
	o.handleConfigChange(context.Background(), model.FileEvent{Path: path, Operation: "WRITE"})
	assert.Equal(t, config.KindSingle, o.TimelineConfig().Kind)

	require.NoError(t, os.WriteFile(path, []byte("type: custom:multiple-logbook-card\nentities: [light.kitchen]\n"), 0o644))
	o.handleConfigChange(context.Background(), model.FileEvent{Path: path, Operation: "WRITE"})
	assert.Equal(t, config.KindMultiple, o.TimelineConfig().Kind)

	require.NoError(t, o.Close())
}

func TestOrchestrator_HandleKeyboard(t *testing.T) {
	o, _ := newTestOrchestrator(t, kitchenCard)
	require.NoError(t, o.Configure())
	ctx := context.Background()

	tests := []struct {
		name   string
		event  interaction.KeyEvent
		quit   bool
		paused bool
	}{
		{"pause", interaction.KeyEvent{Type: interaction.KeyChar, Key: 'p'}, false, true},
		{"resume", interaction.KeyEvent{Type: interaction.KeyChar, Key: 'P'}, false, false},
		{"refresh", interaction.KeyEvent{Type: interaction.KeyChar, Key: 'r'}, false, false},
		{"unknown", interaction.KeyEvent{Type: interaction.KeyChar, Key: 'x'}, false, false},
		{"quit", interaction.KeyEvent{Type: interaction.KeyChar, Key: 'q'}, true, false},
		{"ctrl-c", interaction.KeyEvent{Type: interaction.KeyChar, Key: 3}, true, false},
		{"escape", interaction.KeyEvent{Type: interaction.KeyEscape}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.quit, o.handleKeyboard(ctx, tt.event))
			assert.Equal(t, tt.paused, o.State().GetInteractionState().IsPaused)
		})
	}

	require.NoError(t, o.Close())
	assert.True(t, o.State().GetInteractionState().ForceRefresh)
}

func TestOrchestrator_HandleKeyboardNavigation(t *testing.T) {
	o, _ := newTestOrchestrator(t, kitchenCard)
	ctx := context.Background()

	o.handleKeyboard(ctx, interaction.KeyEvent{Type: interaction.KeyUp})
	assert.Equal(t, 0, o.State().GetInteractionState().ScrollOffset)

	o.handleKeyboard(ctx, interaction.KeyEvent{Type: interaction.KeyDown})
	o.handleKeyboard(ctx, interaction.KeyEvent{Type: interaction.KeyDown})
	o.handleKeyboard(ctx, interaction.KeyEvent{Type: interaction.KeyUp})
	assert.Equal(t, 1, o.State().GetInteractionState().ScrollOffset)

	o.handleKeyboard(ctx, interaction.KeyEvent{Type: interaction.KeyChar, Key: 'e'})
	assert.True(t, o.State().GetInteractionState().Expanded)
}

func TestOrchestrator_Run(t *testing.T) {
	display := &recordingDisplay{}
	keys := &scriptedKeys{ch: make(chan interaction.KeyEvent, 1)}
	watcher := &manualWatcher{ch: make(chan model.FileEvent, 1)}
	o, _ := newTestOrchestrator(t, kitchenCard, WithDisplay(display), WithKeyboard(keys), WithWatcher(watcher))

	done := make(chan error, 1)
	go func() { done <- o.Run(context.Background()) }()

	require.Eventually(t, func() bool {
		return display.lastRendered() != nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, display.lastRendered().Items, 3)

	keys.ch <- interaction.KeyEvent{Type: interaction.KeyChar, Key: 'q'}
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("orchestrator did not stop")
	}

	assert.True(t, display.entered)
	assert.True(t, display.exited)
	assert.True(t, keys.closed)
}

func TestOrchestrator_RunStopsOnCancel(t *testing.T) {
	o, _ := newTestOrchestrator(t, kitchenCard)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- o.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok := o.State().Current()
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("orchestrator did not stop")
	}
}
