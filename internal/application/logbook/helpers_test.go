package logbook

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-ha-logbook/internal/core/model"
)

var t0 = time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)

// fakeSource serves canned samples and can delay or fail lookups.
type fakeSource struct {
	mu      sync.Mutex
	history map[string][]model.RawStateSample
	logs    map[string][]model.RawLogEntry
	delay   time.Duration
	errs    map[string]error // keyed by source name
	calls   map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		history: make(map[string][]model.RawStateSample),
		logs:    make(map[string][]model.RawLogEntry),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (f *fakeSource) wait(ctx context.Context, source string) error {
	f.mu.Lock()
	f.calls[source]++
	err := f.errs[source]
	delay := f.delay
	f.mu.Unlock()

	if err != nil {
		return err
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *fakeSource) FetchHistory(ctx context.Context, entityID string, since, until time.Time) ([]model.RawStateSample, error) {
	if err := f.wait(ctx, sourceHistory); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history[entityID], nil
}

func (f *fakeSource) FetchLogs(ctx context.Context, entityID string, since, until time.Time) ([]model.RawLogEntry, error) {
	if err := f.wait(ctx, sourceLogbook); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logs[entityID], nil
}

func (f *fakeSource) FetchState(ctx context.Context, entityID string) (*model.RawStateSample, error) {
	if err := f.wait(ctx, sourceState); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	samples := f.history[entityID]
	if len(samples) == 0 {
		return nil, nil
	}
	latest := samples[len(samples)-1]
	return &latest, nil
}

func (f *fakeSource) callCount(source string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[source]
}

func kitchenSource() *fakeSource {
	src := newFakeSource()
	attrs := map[string]any{"friendly_name": "Kitchen"}
	msg := "turned on by motion"
	src.history["light.kitchen"] = []model.RawStateSample{
		{EntityID: "light.kitchen", State: "on", Attributes: attrs, ObservedAt: t0},
		{EntityID: "light.kitchen", State: "off", Attributes: attrs, ObservedAt: t0.Add(10 * time.Minute)},
	}
	src.logs["light.kitchen"] = []model.RawLogEntry{
		{When: model.LogTime{Time: t0.Add(5 * time.Minute)}, Name: "Kitchen", Message: &msg, ContextService: "log"},
	}
	return src
}

func writeCard(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "card.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const kitchenCard = `
type: custom:logbook-card
entity: light.kitchen
custom_logs: true
hours_to_show: 1000000
`
