package mem

import "encoding/json"

// TagStats is one tag's contribution to a Statistics snapshot.
type TagStats struct {
	Tag         Tag
	Bytes       uint64
	Allocations uint64
}

// tagStatsJSON is TagStats' wire shape: Tag flattens to its diagnostic
// label/hash string, since Tag's fields are otherwise unexported.
type tagStatsJSON struct {
	Tag         string `json:"tag"`
	Bytes       uint64 `json:"bytes"`
	Allocations uint64 `json:"allocations"`
}

// MarshalJSON implements json.Marshaler.
func (ts TagStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(tagStatsJSON{Tag: ts.Tag.String(), Bytes: ts.Bytes, Allocations: ts.Allocations})
}

// Statistics is an immutable snapshot of the manager's aggregate state,
// produced atomically under the manager's lock. Per-tag order is
// unspecified (spec.md §4.1 snapshot()).
type Statistics struct {
	TotalBytes      uint64     `json:"totalBytes"`
	AllocationCount uint64     `json:"allocationCount"`
	Tags            []TagStats `json:"tags"`
}
