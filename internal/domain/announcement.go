package domain

import "sort"

// AnnouncementType classifies how an announcement is rendered.
type AnnouncementType string

const (
	AnnouncementInfo    AnnouncementType = "info"
	AnnouncementSuccess AnnouncementType = "success"
	AnnouncementWarning AnnouncementType = "warning"
	AnnouncementError   AnnouncementType = "error"
)

// Priority orders announcements; higher weight sorts first.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var priorityWeights = map[Priority]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
}

// Weight returns the sort weight of a priority. Unknown priorities weigh
// zero and sort last.
func (p Priority) Weight() int {
	return priorityWeights[p]
}

// AnnouncementAction describes an optional call-to-action attached to an
// announcement.
type AnnouncementAction struct {
	Label string
	Kind  string
}

// Announcement is an operator-authored message from the remote feed. The
// client never mutates feed content; dismissal is tracked separately by ID.
type Announcement struct {
	ID          string
	Type        AnnouncementType
	Title       string
	Message     string
	Date        string
	Priority    Priority
	Dismissible bool
	Action      *AnnouncementAction
}

var announcementGlyphs = map[AnnouncementType]string{
	AnnouncementInfo:    "ℹ️",
	AnnouncementSuccess: "✅",
	AnnouncementWarning: "⚠️",
	AnnouncementError:   "❌",
}

// IconFor maps an announcement type to its display glyph. Unknown types get
// the info glyph so forward-compatible feed content still renders.
func IconFor(kind AnnouncementType) string {
	if glyph, ok := announcementGlyphs[kind]; ok {
		return glyph
	}
	return announcementGlyphs[AnnouncementInfo]
}

// SelectAnnouncements filters dismissed announcements and orders the rest by
// priority, highest first. The sort is stable: equal-priority announcements
// keep their feed order. The input slice is not modified.
func SelectAnnouncements(all []Announcement, dismissed DismissalSet) []Announcement {
	selected := make([]Announcement, 0, len(all))
	for _, announcement := range all {
		if dismissed.Contains(announcement.ID) {
			continue
		}
		selected = append(selected, announcement)
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Priority.Weight() > selected[j].Priority.Weight()
	})
	return selected
}
