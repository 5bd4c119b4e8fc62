package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-ha-logbook/internal/core/card"
	"github.com/penwyp/go-ha-logbook/internal/core/locale"
	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/core/timeline"
	"github.com/penwyp/go-ha-logbook/internal/util"
)

// TableOptions tune the table for its output device
type TableOptions struct {
	Color    bool // ANSI colors for titles and icons
	Expanded bool // show the items hidden by collapse
	Width    int  // shrink the details column to fit; 0 disables
	Offset   int  // skip this many leading rows
}

// column is one table column; value extracts its cell from a row.
type column struct {
	header string
	value  func(Row) string
	color  func(Row) string
}

type TableFormatter struct {
	view *View
	opts TableOptions
}

func NewTableFormatter(view *View, opts TableOptions) *TableFormatter {
	return &TableFormatter{view: view, opts: opts}
}

func (f *TableFormatter) Format(w io.Writer, res *card.Result) error {
	var b strings.Builder
	f.render(&b, res)
	_, err := io.WriteString(w, b.String())
	return err
}

func (f *TableFormatter) render(b *strings.Builder, res *card.Result) {
	loc := f.view.locale
	cfg := f.view.cfg

	if res.Title != "" {
		if f.opts.Color {
			b.WriteString(util.FormatHeaderTitle(res.Title))
		} else {
			b.WriteString(res.Title)
		}
		b.WriteString("\n")
	}

	if res.Unavailable {
		fmt.Fprintf(b, "%s: %s\n", loc.Text(locale.TextEntityUnavailable), strings.Join(res.Missing, ", "))
		return
	}
	if len(res.Missing) > 0 {
		fmt.Fprintf(b, "%s: %s\n", loc.Text(locale.TextMissing), strings.Join(res.Missing, ", "))
	}
	if res.Empty() {
		b.WriteString(res.NoEvent)
		b.WriteString("\n")
		return
	}

	items := res.Items
	var hidden []model.TimelineItem
	if !f.opts.Expanded {
		items, hidden = timeline.Collapse(items, cfg.Collapse)
	}
	if f.opts.Offset > 0 {
		if f.opts.Offset >= len(items) {
			items = nil
		} else {
			items = items[f.opts.Offset:]
		}
	}

	var groups []timeline.DayGroup
	if cfg.GroupByDay {
		groups = timeline.NewAssemblerIn(loc.Location()).GroupByDay(items)
	} else {
		groups = []timeline.DayGroup{{Items: items}}
	}

	columns := f.columns()
	rows := make([][]Row, len(groups))
	var all []Row
	for i, g := range groups {
		rows[i] = f.view.Rows(g.Items)
		all = append(all, rows[i]...)
	}
	widths := f.calculateColumnWidths(columns, all)

	f.printBorder(b, widths, "top")
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.header
	}
	f.printCells(b, headers, nil, widths)
	f.printBorder(b, widths, "middle")

	for gi, g := range groups {
		if cfg.GroupByDay {
			if gi > 0 {
				f.printBorder(b, widths, "middle")
			}
			f.printSpan(b, loc.FormatDay(g.Day), widths)
			f.printBorder(b, widths, "middle")
		}
		for ri, row := range rows[gi] {
			if ri > 0 && cfg.Show.Separator {
				f.printBorder(b, widths, "middle")
			}
			values := make([]string, len(columns))
			colors := make([]string, len(columns))
			for i, c := range columns {
				values[i] = c.value(row)
				if c.color != nil {
					colors[i] = c.color(row)
				}
			}
			f.printCells(b, values, colors, widths)
		}
	}
	f.printBorder(b, widths, "bottom")

	if len(hidden) > 0 {
		fmt.Fprintf(b, "… %d %s\n", len(hidden), loc.Text(locale.TextMoreItems))
	}
}

// columns picks the columns enabled by the show flags
func (f *TableFormatter) columns() []column {
	show := f.view.cfg.Show
	var cols []column

	if show.Icon {
		cols = append(cols, column{
			header: "Icon",
			value:  func(r Row) string { return r.Icon },
			color:  func(r Row) string { return r.IconColor },
		})
	}
	if show.EntityName {
		cols = append(cols, column{header: "Entity", value: func(r Row) string { return r.EntityName }})
	}
	if show.State {
		cols = append(cols, column{header: "State", value: func(r Row) string { return r.State }})
	}
	if show.StartDate {
		cols = append(cols, column{header: "Start", value: func(r Row) string { return r.Start }})
	}
	if show.EndDate {
		cols = append(cols, column{header: "End", value: func(r Row) string { return r.End }})
	}
	if show.Duration {
		cols = append(cols, column{header: "Duration", value: func(r Row) string { return r.Duration }})
	}
	cols = append(cols, column{header: "Details", value: Row.Details})
	return cols
}

// calculateColumnWidths determines optimal width for each column based on content
func (f *TableFormatter) calculateColumnWidths(columns []column, rows []Row) []int {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = util.GetDisplayWidth(c.header)
	}
	for _, row := range rows {
		for i, c := range columns {
			if w := util.GetDisplayWidth(c.value(row)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	if f.opts.Width > 0 {
		total := 1
		for _, w := range widths {
			total += w + 3
		}
		last := len(widths) - 1
		if over := total - f.opts.Width; over > 0 {
			widths[last] -= over
			if widths[last] < minDetailsWidth {
				widths[last] = minDetailsWidth
			}
		}
	}
	return widths
}

const minDetailsWidth = 10

// printBorder prints table borders (top, middle, bottom)
func (f *TableFormatter) printBorder(b *strings.Builder, widths []int, borderType string) {
	var left, middle, right string

	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat("─", width+2)) // +2 for padding spaces
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right)
	b.WriteString("\n")
}

// printCells prints a row; cells are padded before coloring so ANSI codes do not skew widths.
func (f *TableFormatter) printCells(b *strings.Builder, values, colors []string, widths []int) {
	b.WriteString("│")
	for i, value := range values {
		cell := util.PadRight(value, widths[i])
		if f.opts.Color && colors != nil && colors[i] != "" {
			cell = util.Colorize(cell, colors[i])
		}
		b.WriteString(" ")
		b.WriteString(cell)
		b.WriteString(" │")
	}
	b.WriteString("\n")
}

// printSpan prints a full-width row, used for day headers
func (f *TableFormatter) printSpan(b *strings.Builder, text string, widths []int) {
	inner := 0
	for _, w := range widths {
		inner += w + 3
	}
	inner -= 3

	cell := util.PadRight(text, inner)
	if f.opts.Color {
		cell = util.FormatDayTitle(cell)
	}
	b.WriteString("│ ")
	b.WriteString(cell)
	b.WriteString(" │\n")
}
