package statemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-ha-logbook/internal/core/config"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/core/pattern"
)

type fakeFormatter struct{}

func (fakeFormatter) StateDisplay(s model.RawStateSample) string { return "display:" + s.State }
func (fakeFormatter) EntityIcon(model.RawStateSample) string { return "mdi:generic" }

func rules() []config.StateMapRule {
	return []config.StateMapRule{
		{
			Value: pattern.Compile("on"),
			Label: "Open and locked",
			Icon:  "mdi:lock",
			Attributes: []config.AttributeCondition{
				{Name: "locked", Value: pattern.Compile("true")},
			},
		},
		{Value: pattern.Compile("on"), Label: "Open", IconColor: "red"},
		{Value: pattern.Compile("of*"), Label: ""},
		{Value: pattern.Compile("idle"), Label: "Idle", Icon: "mdi:sleep", IconColor: "blue"},
	}
}

func sample(state string, attrs map[string]any) model.RawStateSample {
	return model.RawStateSample{EntityID: "binary_sensor.door", State: state, Attributes: attrs}
}

func TestResolveLabel(t *testing.T) {
	tests := []struct {
		name   string
		sample model.RawStateSample
		f      Formatter
		want   string
	}{
		{"attribute condition matches", sample("on", map[string]any{"locked": true}), fakeFormatter{}, "Open and locked"},
		{"attribute condition fails", sample("on", map[string]any{"locked": false}), fakeFormatter{}, "Open"},
		{"attribute absent fails the rule", sample("on", nil), fakeFormatter{}, "Open"},
		{"rule without label falls back", sample("off", nil), fakeFormatter{}, "display:off"},
		{"no rule falls back", sample("jammed", nil), fakeFormatter{}, "display:jammed"},
		{"no formatter returns raw state", sample("jammed", nil), nil, "jammed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLabel(tt.sample, rules(), tt.f))
		})
	}
}

func TestResolveIcon(t *testing.T) {
	t.Run("icon from rule", func(t *testing.T) {
		icon := ResolveIcon(sample("idle", nil), rules(), fakeFormatter{})
		require.NotNil(t, icon)
		assert.Equal(t, model.IconDescriptor{Icon: "mdi:sleep", Color: "blue"}, *icon)
	})

	t.Run("color only uses entity icon", func(t *testing.T) {
		icon := ResolveIcon(sample("on", nil), rules(), fakeFormatter{})
		require.NotNil(t, icon)
		assert.Equal(t, model.IconDescriptor{Icon: "mdi:generic", Color: "red"}, *icon)
	})

	t.Run("rule without icon or color", func(t *testing.T) {
		assert.Nil(t, ResolveIcon(sample("off", nil), rules(), fakeFormatter{}))
	})

	t.Run("no matching rule", func(t *testing.T) {
		assert.Nil(t, ResolveIcon(sample("jammed", nil), rules(), fakeFormatter{}))
	})
}

func TestNumericAttributeCondition(t *testing.T) {
	r := []config.StateMapRule{{
		Value:      pattern.Compile("*"),
		Label:      "Full",
		Attributes: []config.AttributeCondition{{Name: "battery_level", Value: pattern.Compile("100")}},
	}}
	assert.Equal(t, "Full", ResolveLabel(sample("ok", map[string]any{"battery_level": float64(100)}), r, nil))
}

func TestResolveIcon_EscapedState(t *testing.T) {
	multiline := []config.StateMapRule{
		{Value: pattern.Compile(`Alarm\ntriggered`), Label: "Alarm", Icon: "mdi:alarm-light", IconColor: "red"},
	}

	tests := []struct {
		name  string
		state string
		want  *model.IconDescriptor
	}{
		{"multi-line state", "Alarm\ntriggered", &model.IconDescriptor{Icon: "mdi:alarm-light", Color: "red"}},
		{"literal backslash n", `Alarm\ntriggered`, nil},
		{"other state", "Alarm", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveIcon(sample(tt.state, nil), multiline, fakeFormatter{}))
		})
	}
}
