package alloc

// Stats is a point-in-time snapshot of an Allocator.
type Stats struct {
	Capacity int `json:"capacity"`
	Boundary int `json:"boundary"`
	Free     int `json:"free"`   // holes below the boundary
	InUse    int `json:"in_use"` // Boundary - Free

	Allocs          uint64 `json:"allocs"`
	Releases        uint64 `json:"releases"`
	Exhausted       uint64 `json:"exhausted"`
	IgnoredReleases uint64 `json:"ignored_releases"`
}

// Untouched returns the number of indices at or above the boundary.
func (s Stats) Untouched() int { return s.Capacity - s.Boundary }
