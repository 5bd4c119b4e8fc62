package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardsCommand(t *testing.T) {
	out, err := execute(t, nil, "cards")
	require.NoError(t, err)

	assert.Contains(t, out, "TYPE")
	assert.Contains(t, out, "logbook-card")
	assert.Contains(t, out, "multiple-logbook-card")
	assert.Contains(t, out, "Display the history of multiple entities")
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name    string
		card    string
		extra   []string
		want    []string
		wantErr string
	}{
		{
			name: "valid single card",
			card: kitchenCard,
			want: []string{"Type:           logbook-card", "Entities:       1", "light.kitchen +logs", "Configuration OK"},
		},
		{
			name: "valid multiple card",
			card: "type: custom:multiple-logbook-card\nmax_items: 10\nentities:\n  - entity: light.kitchen\n    label: Lamp\n  - sensor.door\n",
			want: []string{"multiple-logbook-card", "Max items:      10", "light.kitchen (Lamp)", "sensor.door"},
		},
		{
			name:    "invalid card",
			card:    "type: custom:logbook-card\nentity: light.kitchen\nmax_items: 2\ncollapse: 5\n",
			wantErr: "invalid configuration",
		},
		{
			name:  "entities found",
			card:  kitchenCard,
			extra: []string{"--check-entities"},
			want:  []string{"✓ light.kitchen (off)"},
		},
		{
			name:    "entity missing",
			card:    "type: custom:multiple-logbook-card\nentities:\n  - light.kitchen\n  - light.hall\n",
			extra:   []string{"--check-entities"},
			want:    []string{"✗ light.hall (not found)"},
			wantErr: "1 of 2 entities not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.card)
			args := f.args(append([]string{"validate"}, tt.extra...)...)
			out, err := execute(t, nil, args...)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestWatchOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    watchOptions
		wantErr bool
	}{
		{"defaults", watchOptions{}, false},
		{"one second", watchOptions{refreshRate: time.Second}, false},
		{"too fast", watchOptions{refreshRate: 100 * time.Millisecond}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if tt.wantErr {
				assert.ErrorContains(t, err, "refresh-rate")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWatchCommand_InvalidCardFailsBeforeTerminal(t *testing.T) {
	f := newFixture(t, "type: custom:logbook-card\n")

	_, err := execute(t, nil, f.args("watch")...)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestServeOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    serveOptions
		wantErr string
	}{
		{"defaults", serveOptions{listen: ":8099"}, ""},
		{"no listen address", serveOptions{}, "listen address"},
		{"too fast", serveOptions{listen: ":8099", refreshRate: time.Millisecond}, "refresh-rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestServeCommand_InvalidCard(t *testing.T) {
	f := newFixture(t, "type: custom:multiple-logbook-card\n")

	_, err := execute(t, nil, f.args("serve", "--listen", "127.0.0.1:0")...)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestServeCommand_StopsOnCancel(t *testing.T) {
	f := newFixture(t, kitchenCard)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := execute(t, ctx, f.args("serve", "--listen", "127.0.0.1:0", "--no-reload")...)
		done <- err
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}

	// logs went to the configured file
	_, err := os.Stat(filepath.Join(f.dir, "logs", "app.log"))
	assert.NoError(t, err)
}
