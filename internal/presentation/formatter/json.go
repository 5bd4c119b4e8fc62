package formatter

import (
	"io"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-ha-logbook/internal/core/card"
	"github.com/penwyp/go-ha-logbook/internal/core/config"
)

// jsonDocument is the JSON shape of one rendered card
type jsonDocument struct {
	Type        config.CardKind `json:"type"`
	Title       string          `json:"title,omitempty"`
	RenderedAt  time.Time       `json:"rendered_at"`
	NoEvent     string          `json:"no_event,omitempty"`
	Unavailable bool            `json:"unavailable,omitempty"`
	Missing     []string        `json:"missing,omitempty"`
	Items       []Row           `json:"items"`
}

type JSONFormatter struct {
	view *View
}

func NewJSONFormatter(view *View) *JSONFormatter {
	return &JSONFormatter{view: view}
}

func (f *JSONFormatter) Format(w io.Writer, res *card.Result) error {
	doc := jsonDocument{
		Type:        res.Kind,
		Title:       res.Title,
		RenderedAt:  res.RenderedAt,
		Unavailable: res.Unavailable,
		Missing:     res.Missing,
		Items:       f.view.Rows(res.Items),
	}
	if res.Empty() {
		doc.NoEvent = res.NoEvent
	}

	encoder := sonic.ConfigStd.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}
