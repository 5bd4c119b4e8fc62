package logbook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/core/timeline"
)

func compileCard(t *testing.T, yaml string) *config.TimelineConfig {
	t.Helper()
	cc, err := config.Parse([]byte(yaml))
	require.NoError(t, err)
	tc, err := cc.Compile()
	require.NoError(t, err)
	return tc
}

var testWindow = timeline.Window{Since: t0.Add(-time.Hour), Until: t0.Add(time.Hour)}

func TestDataLoader_Load(t *testing.T) {
	src := kitchenSource()
	dl := NewDataLoader(src, time.Second)

	cfg := compileCard(t, `
type: custom:multiple-logbook-card
entities:
  - entity: light.kitchen
    custom_logs: true
  - light.hall
`)

	inputs, err := dl.Load(context.Background(), cfg, testWindow)
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	kitchen := inputs["light.kitchen"]
	require.NotNil(t, kitchen.State)
	assert.Equal(t, "off", kitchen.State.State)
	assert.Len(t, kitchen.History, 2)
	assert.Len(t, kitchen.Logs, 1)

	hall := inputs["light.hall"]
	assert.Equal(t, "light.hall", hall.EntityID)
	assert.Nil(t, hall.State)
	assert.Empty(t, hall.Logs)

	assert.Equal(t, 2, src.callCount(sourceState))
	assert.Equal(t, 2, src.callCount(sourceHistory))
	assert.Equal(t, 1, src.callCount(sourceLogbook))
}

func TestDataLoader_SkipsDisabledSources(t *testing.T) {
	src := kitchenSource()
	dl := NewDataLoader(src, time.Second)

	cfg := compileCard(t, `
type: custom:logbook-card
entity: light.kitchen
show_history: false
`)

	inputs, err := dl.Load(context.Background(), cfg, testWindow)
	require.NoError(t, err)
	assert.NotNil(t, inputs["light.kitchen"].State)
	assert.Empty(t, inputs["light.kitchen"].History)
	assert.Equal(t, 0, src.callCount(sourceHistory))
	assert.Equal(t, 0, src.callCount(sourceLogbook))
}

func TestDataLoader_Errors(t *testing.T) {
	cfg := compileCard(t, kitchenCard)

	tests := []struct {
		name    string
		setup   func(*fakeSource)
		timeout time.Duration
		wantErr error
		msg     string
	}{
		{
			name:    "history failure",
			setup:   func(f *fakeSource) { f.errs[sourceHistory] = errors.New("connection refused") },
			timeout: time.Second,
			msg:     "failed to fetch history of light.kitchen",
		},
		{
			name:    "logbook failure",
			setup:   func(f *fakeSource) { f.errs[sourceLogbook] = errors.New("bad gateway") },
			timeout: time.Second,
			msg:     "failed to fetch logbook of light.kitchen",
		},
		{
			name:    "timeout",
			setup:   func(f *fakeSource) { f.delay = time.Second },
			timeout: 20 * time.Millisecond,
			wantErr: context.DeadlineExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := kitchenSource()
			tt.setup(src)
			dl := NewDataLoader(src, tt.timeout)

			inputs, err := dl.Load(context.Background(), cfg, testWindow)
			require.Error(t, err)
			assert.Nil(t, inputs)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestDataLoader_FirstErrorCancelsSiblings(t *testing.T) {
	cfg := compileCard(t, kitchenCard)

	src := kitchenSource()
	src.errs[sourceHistory] = errors.New("connection refused")
	src.delay = 5 * time.Second
	dl := NewDataLoader(src, 10*time.Second)

	start := time.Now()
	inputs, err := dl.Load(context.Background(), cfg, testWindow)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Nil(t, inputs)
	assert.Contains(t, err.Error(), "failed to fetch history of light.kitchen")
	assert.NotErrorIs(t, err, context.Canceled)
	assert.Less(t, elapsed, 2*time.Second)
}
