package filter

import "strings"

// MarkerFilter rejects a whole listing group when its visible text contains
// any forbidden marker, e.g. an "Email:" label carrying contact data.
// Matching is a case-sensitive substring test; blank markers are ignored.
type MarkerFilter struct {
	markers []string
}

// NewMarkerFilter returns a filter rejecting text that contains any marker.
func NewMarkerFilter(markers []string) *MarkerFilter {
	kept := make([]string, 0, len(markers))
	for _, m := range markers {
		if strings.TrimSpace(m) != "" {
			kept = append(kept, m)
		}
	}
	return &MarkerFilter{markers: kept}
}

// Allow returns false if text contains any forbidden marker. A nil filter
// allows everything.
func (f *MarkerFilter) Allow(text string) bool {
	if f == nil {
		return true
	}
	for _, m := range f.markers {
		if strings.Contains(text, m) {
			return false
		}
	}
	return true
}
