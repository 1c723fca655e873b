package domain

import "sort"

// DismissalSet holds the ids of announcements the user has hidden. Set
// semantics make repeated dismissals of the same id a no-op, even when an
// older persisted list carried duplicates.
type DismissalSet map[string]struct{}

func NewDismissalSet(ids ...string) DismissalSet {
	set := make(DismissalSet, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

func (s DismissalSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Record returns a set containing id in addition to the receiver's contents.
// The receiver is not modified.
func (s DismissalSet) Record(id string) DismissalSet {
	updated := make(DismissalSet, len(s)+1)
	for existing := range s {
		updated[existing] = struct{}{}
	}
	if id != "" {
		updated[id] = struct{}{}
	}
	return updated
}

// IDs returns the dismissed ids sorted, for stable persistence and output.
func (s DismissalSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
