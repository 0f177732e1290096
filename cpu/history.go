package cpu

import (
	"slices"
)

const (
	HISTORY_LIMIT = 100 // Default number of snapshots kept.
)

// Snapshot is the machine state captured before an instruction dispatches.
type Snapshot struct {
	Registers Registers
	Memory    []int
}

// clone returns a deep copy of the snapshot.
func (snap Snapshot) clone() Snapshot {
	return Snapshot{
		Registers: snap.Registers,
		Memory:    slices.Clone(snap.Memory),
	}
}

// History is a bounded sequence of snapshots, newest last.
type History struct {
	Limit int // Snapshots kept. None are kept if zero or negative.
	Data  []Snapshot
}

// Push appends a snapshot, dropping the oldest entries beyond the limit.
func (h *History) Push(snap Snapshot) {
	limit := max(h.Limit, 0)

	h.Data = append(h.Data, snap)
	if len(h.Data) > limit {
		h.Data = slices.Delete(h.Data, 0, len(h.Data)-limit)
	}
}

// Peek returns the newest snapshot.
func (h *History) Peek() (snap Snapshot, ok bool) {
	if h.Empty() {
		return
	}

	return h.Data[len(h.Data)-1], true
}

// Len returns the number of snapshots held.
func (h *History) Len() int {
	return len(h.Data)
}

func (h *History) Empty() bool {
	return len(h.Data) == 0
}

func (h *History) Reset() {
	if len(h.Data) > 0 {
		h.Data = h.Data[:0]
	}
}

// Snapshots returns a deep copy of the history.
func (h *History) Snapshots() (snaps []Snapshot) {
	snaps = make([]Snapshot, 0, h.Len())
	for _, snap := range h.Data {
		snaps = append(snaps, snap.clone())
	}

	return
}
