package history

import "github.com/penwyp/go-ha-logbook/internal/core/model"

// Squash folds consecutive intervals into runs. An interval starts a new run when
// there is no run yet, or when its state differs from the current run and is not
// "unknown". Otherwise it extends the current run, which keeps its own label,
// icon, attributes and source. The input slice is not modified.
func Squash(items []model.HistoryItem) []model.HistoryItem {
	runs := make([]model.HistoryItem, 0, len(items))
	for _, val := range items {
		if len(runs) == 0 {
			runs = append(runs, val)
			continue
		}
		prev := &runs[len(runs)-1]
		if prev.State != val.State && val.State != model.StateUnknown {
			runs = append(runs, val)
			continue
		}
		prev.End = val.End
		prev.DurationMs += val.DurationMs
	}
	return runs
}
