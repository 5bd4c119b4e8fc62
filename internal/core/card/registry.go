package card

import (
	"errors"
	"fmt"
	"sync"

	"github.com/penwyp/go-ha-logbook/internal/core/config"
)

// ErrDuplicateCard is returned when a card type is registered twice.
var ErrDuplicateCard = errors.New("card type already registered")

// ErrUnknownCard is returned when no factory exists for a card type.
var ErrUnknownCard = errors.New("card type not registered")

// Factory builds a card from a compiled configuration.
type Factory func(cfg *config.TimelineConfig) (Card, error)

// Info describes a registered card type.
type Info struct {
	Kind        config.CardKind `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Preview     bool            `json:"preview"`
	New         Factory         `json:"-"`
}

// Registry holds the card types known to the process. Registration is explicit;
// nothing registers itself at import time.
type Registry struct {
	mu    sync.RWMutex
	cards map[config.CardKind]Info
	order []config.CardKind
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{cards: make(map[config.CardKind]Info)}
}

// Register adds a card type. Registering the same type twice is an error.
func (r *Registry) Register(info Info) error {
	if info.Kind == "" {
		return fmt.Errorf("register card: empty type")
	}
	if info.New == nil {
		return fmt.Errorf("register card %s: nil factory", info.Kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cards[info.Kind]; exists {
		return fmt.Errorf("register card %s: %w", info.Kind, ErrDuplicateCard)
	}
	r.cards[info.Kind] = info
	r.order = append(r.order, info.Kind)
	return nil
}

// Lookup returns the registration for a card type.
func (r *Registry) Lookup(kind config.CardKind) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.cards[kind]
	return info, ok
}

// List returns registrations in registration order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Info, 0, len(r.order))
	for _, kind := range r.order {
		out = append(out, r.cards[kind])
	}
	return out
}

// New builds the card matching the configuration's kind.
func (r *Registry) New(cfg *config.TimelineConfig) (Card, error) {
	info, ok := r.Lookup(cfg.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCard, cfg.Kind)
	}
	return info.New(cfg)
}

// RegisterBuiltins registers the single and multiple entity logbook cards.
func RegisterBuiltins(reg *Registry) error {
	builtins := []Info{
		{
			Kind:        config.KindSingle,
			Name:        "Logbook Card",
			Description: "Display the history of an entity",
			Preview:     true,
			New: func(cfg *config.TimelineConfig) (Card, error) {
				return NewSingle(cfg)
			},
		},
		{
			Kind:        config.KindMultiple,
			Name:        "Multiple Logbook Card",
			Description: "Display the history of multiple entities",
			Preview:     true,
			New: func(cfg *config.TimelineConfig) (Card, error) {
				return NewMultiple(cfg)
			},
		},
	}

	for _, info := range builtins {
		if err := reg.Register(info); err != nil {
			return err
		}
	}
	return nil
}
