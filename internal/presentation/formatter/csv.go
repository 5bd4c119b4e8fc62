package formatter

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/penwyp/go-ha-logbook/internal/core/card"
)

type CSVFormatter struct {
	view *View
}

func NewCSVFormatter(view *View) *CSVFormatter {
	return &CSVFormatter{view: view}
}

// Format writes one record per item. Timestamps are RFC 3339 so the file
// sorts and parses regardless of the configured date format.
func (f *CSVFormatter) Format(w io.Writer, res *card.Result) error {
	cw := csv.NewWriter(w)

	headers := []string{
		"Type", "Entity", "Name", "State", "Start", "End",
		"Duration", "Duration (ms)", "Details",
	}
	if err := cw.Write(headers); err != nil {
		return err
	}

	for _, row := range f.view.Rows(res.Items) {
		end := ""
		if row.EndTime != nil {
			end = row.EndTime.Format(time.RFC3339)
		}
		duration := ""
		if row.DurationMs > 0 {
			duration = strconv.FormatInt(row.DurationMs, 10)
		}
		record := []string{
			string(row.Type),
			row.Entity,
			row.EntityName,
			row.State,
			row.StartTime.Format(time.RFC3339),
			end,
			row.Duration,
			duration,
			row.Details(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
