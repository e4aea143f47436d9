// Package snapshot models one run's availability results and the diffing
// that decides whether anything changed since the previous run.
package snapshot

import "sort"

// Snapshot maps a ticket-type key to its ordered list of available dates
// or times. Time-slot results live under a suffixed companion key so both
// can be diffed independently. This is the unit persisted between runs.
type Snapshot map[string][]string

// TimesKey returns the companion key holding a ticket type's time-slot
// results.
func TimesKey(key string) string {
	return key + "_times"
}

// Changed returns, in sorted order, the keys in next whose lists differ
// from prev. A key with no prior entry counts as changed even when its
// new list is empty, matching how a newly configured ticket type should
// announce itself.
func Changed(prev, next Snapshot) []string {
	var changed []string
	for key, list := range next {
		prior, seen := prev[key]
		if !seen || !Equal(Strings(prior), Strings(list)) {
			changed = append(changed, key)
		}
	}
	sort.Strings(changed)
	return changed
}
