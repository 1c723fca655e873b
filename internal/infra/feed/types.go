package feed

import "updatewatch/internal/domain"

// AnnouncementFeed mirrors the announcement feed JSON document.
type AnnouncementFeed struct {
	Version       string               `json:"version"`
	LastUpdated   string               `json:"last_updated"`
	Announcements []AnnouncementRecord `json:"announcements"`
	Metadata      AnnouncementMetadata `json:"metadata"`
}

type AnnouncementMetadata struct {
	TotalAnnouncements  int `json:"total_announcements"`
	ActiveAnnouncements int `json:"active_announcements"`
	FetchIntervalHours  int `json:"fetch_interval_hours"`
}

type AnnouncementRecord struct {
	ID          string        `json:"id"`
	Type        string        `json:"type"`
	Title       string        `json:"title"`
	Message     string        `json:"message"`
	Date        string        `json:"date"`
	Priority    string        `json:"priority"`
	Dismissible bool          `json:"dismissible"`
	Action      *ActionRecord `json:"action"`
}

type ActionRecord struct {
	Label string `json:"label"`
	Kind  string `json:"action"`
}

// DomainAnnouncements converts the raw feed entries into domain announcements.
func (f *AnnouncementFeed) DomainAnnouncements() []domain.Announcement {
	announcements := make([]domain.Announcement, 0, len(f.Announcements))
	for _, raw := range f.Announcements {
		announcement := domain.Announcement{
			ID:          raw.ID,
			Type:        domain.AnnouncementType(raw.Type),
			Title:       raw.Title,
			Message:     raw.Message,
			Date:        raw.Date,
			Priority:    domain.Priority(raw.Priority),
			Dismissible: raw.Dismissible,
		}
		if raw.Action != nil {
			announcement.Action = &domain.AnnouncementAction{
				Label: raw.Action.Label,
				Kind:  raw.Action.Kind,
			}
		}
		announcements = append(announcements, announcement)
	}
	return announcements
}

// CatalogFeed mirrors the catalog version feed JSON document.
type CatalogFeed struct {
	Version     string             `json:"version"`
	LastUpdated string             `json:"last_updated"`
	TotalIDs    int                `json:"total_ids"`
	Changelog   []ChangelogRecord  `json:"changelog"`
	Metadata    CatalogFeedOptions `json:"metadata"`
}

type ChangelogRecord struct {
	Version string   `json:"version"`
	Date    string   `json:"date"`
	Changes []string `json:"changes"`
}

type CatalogFeedOptions struct {
	Repository        string `json:"repository"`
	RawURL            string `json:"raw_url"`
	CheckForUpdates   bool   `json:"check_for_updates"`
	AutoUpdateEnabled bool   `json:"auto_update_enabled"`
}

// VersionInfo converts the feed into the domain's remote catalog view,
// preserving changelog order (most recent first).
func (f *CatalogFeed) VersionInfo() domain.CatalogVersionInfo {
	info := domain.CatalogVersionInfo{
		Version:      f.Version,
		TotalEntries: f.TotalIDs,
	}
	for _, entry := range f.Changelog {
		info.Changelog = append(info.Changelog, domain.ChangelogEntry{
			Version: entry.Version,
			Date:    entry.Date,
			Changes: append([]string(nil), entry.Changes...),
		})
	}
	return info
}

// CatalogSnapshot is the version/size pair parsed back out of a downloaded
// catalog blob, used to refresh the local state after an accepted update.
type CatalogSnapshot struct {
	Version  string `json:"version"`
	TotalIDs int    `json:"total_ids"`
}
