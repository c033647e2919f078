package prompt

// Store exposes quick prompt retrieval for HTTP handlers.
type Store interface {
	List() []QuickPrompt
	FindByID(id string) (QuickPrompt, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []QuickPrompt
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied prompts.
func NewMemoryStore(items []QuickPrompt) *MemoryStore {
	return &MemoryStore{items: append([]QuickPrompt(nil), items...)}
}

// List returns the prompts in display order.
func (s *MemoryStore) List() []QuickPrompt {
	return append([]QuickPrompt(nil), s.items...)
}

// FindByID looks up a prompt by identifier.
func (s *MemoryStore) FindByID(id string) (QuickPrompt, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return QuickPrompt{}, false
}
