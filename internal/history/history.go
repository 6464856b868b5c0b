// Package history persists recent searches and display preferences in the
// shared key-value store.
package history

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/collab/internal/storage"
)

// MaxEntries is the number of searches kept.
const MaxEntries = 10

const searchesKey = storage.HistoryPrefix + "searches"

// Preference keys.
const (
	PrefWindow = storage.PrefPrefix + "window"
	PrefLayout = storage.PrefPrefix + "layout"
)

// Store is the key-value store history is kept in.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// History records searches, most recent first.
type History struct {
	store Store
}

// New creates a History over store.
func New(store Store) *History {
	return &History{store: store}
}

// List returns recorded search terms, most recent first.
func (h *History) List() ([]string, error) {
	raw, ok, err := h.store.Get(searchesKey)
	if err != nil {
		return nil, fmt.Errorf("reading search history: %w", err)
	}
	if !ok {
		return []string{}, nil
	}

	var terms []string
	if err := json.Unmarshal([]byte(raw), &terms); err != nil {
		// A corrupt list is dropped rather than blocking new entries.
		return []string{}, nil
	}
	return terms, nil
}

// Add records term as the most recent search. Terms are compared
// case-insensitively; an earlier occurrence is moved to the front.
func (h *History) Add(term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}

	terms, err := h.List()
	if err != nil {
		return err
	}

	updated := make([]string, 0, len(terms)+1)
	updated = append(updated, term)
	for _, t := range terms {
		if !strings.EqualFold(t, term) {
			updated = append(updated, t)
		}
	}
	if len(updated) > MaxEntries {
		updated = updated[:MaxEntries]
	}

	data, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("encoding search history: %w", err)
	}
	if err := h.store.Set(searchesKey, string(data)); err != nil {
		return fmt.Errorf("writing search history: %w", err)
	}
	return nil
}

// Clear removes all recorded searches.
func (h *History) Clear() error {
	if err := h.store.Delete(searchesKey); err != nil {
		return fmt.Errorf("clearing search history: %w", err)
	}
	return nil
}

// Prefs holds display preferences.
type Prefs struct {
	store Store
}

// NewPrefs creates a Prefs over store.
func NewPrefs(store Store) *Prefs {
	return &Prefs{store: store}
}

// Window returns the stored window in days, or fallback when unset or
// unreadable.
func (p *Prefs) Window(fallback int) int {
	raw, ok, err := p.store.Get(PrefWindow)
	if err != nil || !ok {
		return fallback
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return days
}

// SetWindow stores the window in days.
func (p *Prefs) SetWindow(days int) error {
	if err := p.store.Set(PrefWindow, strconv.Itoa(days)); err != nil {
		return fmt.Errorf("writing window preference: %w", err)
	}
	return nil
}

// Layout returns the stored layout, or fallback when unset.
func (p *Prefs) Layout(fallback string) string {
	raw, ok, err := p.store.Get(PrefLayout)
	if err != nil || !ok || raw == "" {
		return fallback
	}
	return raw
}

// SetLayout stores the layout.
func (p *Prefs) SetLayout(layout string) error {
	if err := p.store.Set(PrefLayout, layout); err != nil {
		return fmt.Errorf("writing layout preference: %w", err)
	}
	return nil
}
