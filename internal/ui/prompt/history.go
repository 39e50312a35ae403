package prompt

import (
	"context"

	"pkt.systems/pslog"
)

// Persister stores prompt history between runs.
type Persister interface {
	Load(ctx context.Context, kind string) ([]string, error)
	Append(ctx context.Context, kind, entry string) error
}

// History is the entry list of one prompt kind, oldest first. A failing
// persister only costs persistence; the in-memory list keeps working.
type History struct {
	kind    string
	entries []string
	store   Persister
	log     pslog.Logger
}

// NewHistory loads the entries of kind from store. store may be nil.
func NewHistory(ctx context.Context, kind string, store Persister, log pslog.Logger) *History {
	if log == nil {
		log = pslog.Ctx(ctx)
	}
	h := &History{kind: kind, store: store, log: log.With("history", kind)}
	if store == nil {
		return h
	}
	entries, err := store.Load(ctx, kind)
	if err != nil {
		h.log.Warn("history load failed", "err", err)
		return h
	}
	h.entries = entries
	h.log.Debug("history loaded", "entries", len(entries))
	return h
}

// Kind returns the history name.
func (h *History) Kind() string { return h.kind }

// Len returns the number of entries.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.entries)
}

// At returns entry i, oldest first.
func (h *History) At(i int) string { return h.entries[i] }

// Add records entry as the newest item, dropping an older duplicate.
func (h *History) Add(ctx context.Context, entry string) {
	if h == nil || entry == "" {
		return
	}
	for i, existing := range h.entries {
		if existing == entry {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}
	h.entries = append(h.entries, entry)
	if h.store == nil {
		return
	}
	if err := h.store.Append(ctx, h.kind, entry); err != nil {
		h.log.Warn("history append failed", "err", err)
	}
}
