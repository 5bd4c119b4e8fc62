package card

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/core/locale"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/util"
)

var t0 = time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)

func compile(t *testing.T, yaml string) *config.TimelineConfig {
	t.Helper()
	cc, err := config.Parse([]byte(yaml))
	require.NoError(t, err)
	tc, err := cc.Compile()
	require.NoError(t, err)
	return tc
}

func sample(id, state string, minutes int, attrs map[string]any) model.RawStateSample {
	return model.RawStateSample{
		EntityID:   id,
		State:      state,
		Attributes: attrs,
		ObservedAt: t0.Add(time.Duration(minutes) * time.Minute),
	}
}

func fixtures() (*locale.Provider, util.Clock) {
	clock := util.FixedClock{T: t0.Add(30 * time.Minute)}
	return locale.New("en", time.UTC, clock), clock
}

func kitchenInput() EntityInput {
	attrs := map[string]any{"friendly_name": "Kitchen"}
	msg := "turned on by motion"
	latest := sample("light.kitchen", "off", 10, attrs)
	return EntityInput{
		EntityID: "light.kitchen",
		State:    &latest,
		History: []model.RawStateSample{
			sample("light.kitchen", "on", 0, attrs),
			latest,
		},
		Logs: []model.RawLogEntry{
			{When: model.LogTime{Time: t0.Add(5 * time.Minute)}, Name: "Kitchen", Message: &msg, ContextService: "log"},
			{When: model.LogTime{Time: t0.Add(6 * time.Minute)}, Name: "Kitchen", Message: &msg},
		},
	}
}

func TestSingle_Render(t *testing.T) {
	cfg := compile(t, `
type: custom:logbook-card
entity: light.kitchen
custom_logs: true
`)
	c, err := NewSingle(cfg)
	require.NoError(t, err)
	f, clock := fixtures()

	res := c.Render(map[string]EntityInput{"light.kitchen": kitchenInput()}, f, clock)

	assert.Equal(t, "Kitchen History", res.Title)
	assert.Equal(t, "No event on the period", res.NoEvent)
	assert.False(t, res.Unavailable)
	require.Len(t, res.Items, 3)

	// descending by default
	assert.Equal(t, model.KindHistory, res.Items[0].Kind)
	assert.Equal(t, "Off", res.Items[0].History.Label)
	assert.Equal(t, int64(20*60*1000), res.Items[0].History.DurationMs)
	assert.Equal(t, model.KindCustomLog, res.Items[1].Kind)
	assert.Equal(t, "turned on by motion", res.Items[1].CustomLog.Message)
	assert.Equal(t, "On", res.Items[2].History.Label)
}

func TestSingle_RenderOptions(t *testing.T) {
	f, clock := fixtures()
	inputs := map[string]EntityInput{"light.kitchen": kitchenInput()}

	tests := []struct {
		name  string
		yaml  string
		title string
		kinds []model.ItemKind
	}{
		{
			name:  "custom logs off by default",
			yaml:  "type: logbook-card\nentity: light.kitchen\n",
			title: "Kitchen History",
			kinds: []model.ItemKind{model.KindHistory, model.KindHistory},
		},
		{
			name:  "history hidden",
			yaml:  "type: logbook-card\nentity: light.kitchen\ncustom_logs: true\nshow_history: false\ntitle: Lights\n",
			title: "Lights",
			kinds: []model.ItemKind{model.KindCustomLog},
		},
		{
			name:  "ascending and capped",
			yaml:  "type: logbook-card\nentity: light.kitchen\ncustom_logs: true\ndesc: false\nmax_items: 2\n",
			title: "Kitchen History",
			kinds: []model.ItemKind{model.KindHistory, model.KindCustomLog},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewSingle(compile(t, tt.yaml))
			require.NoError(t, err)

			res := c.Render(inputs, f, clock)

			assert.Equal(t, tt.title, res.Title)
			kinds := make([]model.ItemKind, len(res.Items))
			for i, it := range res.Items {
				kinds[i] = it.Kind
			}
			assert.Equal(t, tt.kinds, kinds)
		})
	}
}

func TestSingle_MissingEntity(t *testing.T) {
	c, err := NewSingle(compile(t, "type: logbook-card\nentity: light.gone\nno_event: Nothing\n"))
	require.NoError(t, err)
	f, clock := fixtures()

	res := c.Render(map[string]EntityInput{}, f, clock)

	assert.True(t, res.Unavailable)
	assert.True(t, res.Empty())
	assert.Equal(t, []string{"light.gone"}, res.Missing)
	assert.Equal(t, "light.gone History", res.Title)
	assert.Equal(t, "Nothing", res.NoEvent)
}

func TestMultiple_Render(t *testing.T) {
	cfg := compile(t, `
type: multiple-logbook-card
title: House
entities:
  - light.kitchen
  - entity: sensor.door
    label: Front door
  - switch.gone
`)
	c, err := NewMultiple(cfg)
	require.NoError(t, err)
	f, clock := fixtures()

	doorState := sample("sensor.door", "open", 15, nil)
	inputs := map[string]EntityInput{
		"light.kitchen": kitchenInput(),
		"sensor.door": {
			EntityID: "sensor.door",
			State:    &doorState,
			History:  []model.RawStateSample{doorState},
		},
		"switch.gone": {EntityID: "switch.gone"},
	}

	res := c.Render(inputs, f, clock)

	assert.Equal(t, "House", res.Title)
	assert.Equal(t, []string{"switch.gone"}, res.Missing)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "sensor.door", res.Items[0].EntityID())
	assert.Equal(t, "Front door", res.Items[0].History.EntityName)
	assert.Equal(t, "light.kitchen", res.Items[1].EntityID())
	assert.Equal(t, "light.kitchen", res.Items[2].EntityID())
}

func TestNewCard_RejectsWrongEntityCount(t *testing.T) {
	_, err := NewSingle(&config.TimelineConfig{})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = NewMultiple(nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterBuiltins(reg))

	infos := reg.List()
	require.Len(t, infos, 2)
	assert.Equal(t, config.KindSingle, infos[0].Kind)
	assert.Equal(t, config.KindMultiple, infos[1].Kind)

	err := RegisterBuiltins(reg)
	assert.True(t, errors.Is(err, ErrDuplicateCard))

	c, err := reg.New(compile(t, "type: multiple-logbook-card\nentities: [light.a]\n"))
	require.NoError(t, err)
	assert.Equal(t, config.KindMultiple, c.Kind())
	assert.IsType(t, &Multiple{}, c)

	_, err = NewRegistry().New(&config.TimelineConfig{Kind: config.KindSingle})
	assert.ErrorIs(t, err, ErrUnknownCard)
}

func TestRegistry_RejectsIncompleteInfo(t *testing.T) {
	reg := NewRegistry()

	assert.Error(t, reg.Register(Info{Name: "no type"}))
	assert.Error(t, reg.Register(Info{Kind: "x-card"}))
	assert.Empty(t, reg.List())
}
