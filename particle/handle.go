package particle

// Handle refers to a particle across compactions. The zero Handle is invalid.
type Handle struct {
	slot int32
	gen  uint32
}

// IsZero reports whether h was never issued.
func (h Handle) IsZero() bool {
	return h.gen == 0
}

type handleEntry struct {
	index int32
	gen   uint32
}

// handleTable maps stable handles to the current index of their particle.
// Slots are recycled; the generation counter invalidates old handles.
type handleTable struct {
	entries []handleEntry
	free    []int32
}

func (t *handleTable) acquire(index int32) Handle {
	var slot int32
	if n := len(t.free); n > 0 {
		slot = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		slot = int32(len(t.entries))
		t.entries = append(t.entries, handleEntry{index: InvalidIndex})
	}
	e := &t.entries[slot]
	e.gen++
	e.index = index
	return Handle{slot: slot, gen: e.gen}
}

func (t *handleTable) release(slot int32) {
	e := &t.entries[slot]
	e.gen++
	e.index = InvalidIndex
	t.free = append(t.free, slot)
}

func (t *handleTable) move(slot, index int32) {
	t.entries[slot].index = index
}

func (t *handleTable) resolve(h Handle) (int32, bool) {
	if h.slot < 0 || int(h.slot) >= len(t.entries) {
		return InvalidIndex, false
	}
	e := t.entries[h.slot]
	if e.gen != h.gen || e.index == InvalidIndex {
		return InvalidIndex, false
	}
	return e.index, true
}

func (t *handleTable) live() int {
	return len(t.entries) - len(t.free)
}
