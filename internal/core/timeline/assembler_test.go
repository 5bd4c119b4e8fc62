package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-ha-logbook/internal/core/model"
)

var t0 = time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)

func hist(id string, minutes int) model.TimelineItem {
	start := t0.Add(time.Duration(minutes) * time.Minute)
	return model.FromHistory([]model.HistoryItem{{EntityID: id, State: id, Start: start}})[0]
}

func logAt(id string, minutes int) model.TimelineItem {
	start := t0.Add(time.Duration(minutes) * time.Minute)
	return model.FromCustomLogs([]model.CustomLogItem{{Entity: id, Name: id, Start: start}})[0]
}

func starts(items []model.TimelineItem) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = int(it.Start.Sub(t0).Minutes())
	}
	return out
}

func TestMergeTimelines_LogBeforeHistoryRegardlessOfInputOrder(t *testing.T) {
	a := NewAssemblerIn(time.UTC)

	merged := a.MergeTimelines(
		[]model.TimelineItem{hist("h", 10)},
		[]model.TimelineItem{logAt("l", 5)},
	)

	require.Len(t, merged, 2)
	assert.Equal(t, model.KindCustomLog, merged[0].Kind)
	assert.Equal(t, model.KindHistory, merged[1].Kind)
}

func TestMergeTimelines_StableForEqualStarts(t *testing.T) {
	a := NewAssemblerIn(time.UTC)

	merged := a.MergeTimelines(
		[]model.TimelineItem{hist("first", 1)},
		[]model.TimelineItem{logAt("second", 1)},
	)

	assert.Equal(t, "first", merged[0].EntityID())
	assert.Equal(t, "second", merged[1].EntityID())
}

func TestAssemble_OrderingAndTruncation(t *testing.T) {
	a := NewAssemblerIn(time.UTC)
	streams := [][]model.TimelineItem{
		{hist("a", 0), hist("a", 20), hist("a", 40)},
		{hist("b", 10), hist("b", 30)},
	}

	tests := []struct {
		name string
		opts Options
		want []int
	}{
		{"ascending", Options{}, []int{0, 10, 20, 30, 40}},
		{"descending", Options{Desc: true}, []int{40, 30, 20, 10, 0}},
		{"ascending capped", Options{MaxItems: 2}, []int{0, 10}},
		{"descending capped", Options{Desc: true, MaxItems: 2}, []int{40, 30}},
		{"cap larger than list", Options{MaxItems: 10}, []int{0, 10, 20, 30, 40}},
		{"negative cap keeps all", Options{MaxItems: -1}, []int{0, 10, 20, 30, 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, starts(a.Assemble(streams, tt.opts)))
		})
	}
}

func TestAssemble_InterleavesEntitiesBeforeReversing(t *testing.T) {
	a := NewAssemblerIn(time.UTC)

	got := a.Assemble([][]model.TimelineItem{
		{hist("a", 0), hist("a", 30)},
		{logAt("b", 15)},
	}, Options{Desc: true})

	assert.Equal(t, []string{"a", "b", "a"}, []string{got[0].EntityID(), got[1].EntityID(), got[2].EntityID()})
}

func TestGroupByDay(t *testing.T) {
	a := NewAssemblerIn(time.UTC)
	items := []model.TimelineItem{hist("a", 0), hist("a", 90), hist("a", 150), logAt("b", 24*60+120)}

	groups := a.GroupByDay(items)

	require.Len(t, groups, 3)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), groups[0].Day)
	assert.Len(t, groups[1].Items, 1)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), groups[1].Day)
	assert.Len(t, groups[2].Items, 1)
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), groups[2].Day)
}

func TestGroupByDay_UsesLocation(t *testing.T) {
	oslo := time.FixedZone("CET", 3600)
	a := NewAssemblerIn(oslo)

	// 22:00 and 23:30 UTC are 23:00 and 00:30 in CET.
	groups := a.GroupByDay([]model.TimelineItem{hist("a", 0), hist("a", 90)})

	assert.Len(t, groups, 2)
	assert.Len(t, NewAssemblerIn(time.UTC).GroupByDay([]model.TimelineItem{hist("a", 0), hist("a", 90)}), 1)
}

func TestCollapse(t *testing.T) {
	items := []model.TimelineItem{hist("a", 0), hist("a", 1), hist("a", 2)}

	visible, hidden := Collapse(items, 2)
	assert.Len(t, visible, 2)
	assert.Len(t, hidden, 1)

	visible, hidden = Collapse(items, 3)
	assert.Len(t, visible, 3)
	assert.Nil(t, hidden)

	visible, hidden = Collapse(items, 0)
	assert.Len(t, visible, 3)
	assert.Nil(t, hidden)
}

func TestLookbackWindow(t *testing.T) {
	w := LookbackWindow(t0.Add(time.Hour), 30*time.Minute)
	assert.Equal(t, t0.Add(30*time.Minute), w.Since)
	assert.Equal(t, t0.Add(time.Hour), w.Until)
}
