package outreach

import (
	"fmt"
	"strings"
)

// Filter selects tracker entries by best status. FilterAll matches every entry.
type Filter string

// FilterAll matches every entry regardless of status.
const FilterAll Filter = "all"

// ParseFilter accepts "all" or any status name.
func ParseFilter(raw string) (Filter, error) {
	if raw == "" || strings.EqualFold(strings.TrimSpace(raw), string(FilterAll)) {
		return FilterAll, nil
	}
	s, err := ParseStatus(raw)
	if err != nil {
		return "", fmt.Errorf("invalid filter: %w", err)
	}
	return Filter(s), nil
}

// Matches reports whether the entry's best status satisfies the filter.
func (f Filter) Matches(e TrackerEntry) bool {
	if f == FilterAll {
		return true
	}
	return Status(f) == e.BestStatus()
}

// FilterEntries returns the entries whose best status matches f.
func FilterEntries(entries []TrackerEntry, f Filter) []TrackerEntry {
	if f == FilterAll {
		return entries
	}
	var out []TrackerEntry
	for _, e := range entries {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// CountByBestStatus counts entries per best status. The FilterAll key holds the total.
func CountByBestStatus(entries []TrackerEntry) map[Filter]int {
	counts := map[Filter]int{FilterAll: 0}
	for _, e := range entries {
		counts[Filter(e.BestStatus())]++
		counts[FilterAll]++
	}
	return counts
}

// TotalContacts sums the contacts across all entries.
func TotalContacts(entries []TrackerEntry) int {
	total := 0
	for _, e := range entries {
		total += len(e.Contacts)
	}
	return total
}
