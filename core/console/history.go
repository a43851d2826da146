package console

import "sync"

// DefaultHistorySize bounds a session's history unless configured
// otherwise.
const DefaultHistorySize = 1000

// History is a bounded ring buffer of raw command lines. Once full, the
// oldest entry drops silently on each append.
type History struct {
	mu    sync.Mutex
	items []string
	start int
	count int
}

// NewHistory creates a history holding at most capacity entries.
// Non-positive capacities fall back to DefaultHistorySize.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{items: make([]string, capacity)}
}

// Append records line as the most recent entry.
func (h *History) Append(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count < len(h.items) {
		h.items[(h.start+h.count)%len(h.items)] = line
		h.count++
		return
	}
	h.items[h.start] = line
	h.start = (h.start + 1) % len(h.items)
}

// List returns the retained entries, oldest first.
func (h *History) List() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, 0, h.count)
	for i := 0; i < h.count; i++ {
		out = append(out, h.items[(h.start+i)%len(h.items)])
	}
	return out
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Clear drops all entries.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.start, h.count = 0, 0
}

// Replace resets the history to lines, keeping at most capacity of the
// most recent entries. Used when restoring persisted session state.
func (h *History) Replace(lines []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.start, h.count = 0, 0
	if len(lines) > len(h.items) {
		lines = lines[len(lines)-len(h.items):]
	}
	copy(h.items, lines)
	h.count = len(lines)
}
