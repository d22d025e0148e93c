package table

import "github.com/joshuapare/slotkit/slot/alloc"

// Stats is a snapshot of a Table. The allocator part is internally
// consistent; the entry counters are read separately and may be skewed by
// operations in flight.
type Stats struct {
	alloc.Stats

	Occupied       int    `json:"occupied"`
	Publishes      uint64 `json:"publishes"`
	Removes        uint64 `json:"removes"`
	IgnoredRemoves uint64 `json:"ignored_removes"`
}

// Reserved returns the number of indices allocated but not yet published.
func (s Stats) Reserved() int {
	if r := s.InUse - s.Occupied; r > 0 {
		return r
	}
	return 0
}
