package domain

import "fmt"

// ChangelogEntry records the human-readable changes of one catalog release,
// most recent release first in CatalogVersionInfo.Changelog.
type ChangelogEntry struct {
	Version string
	Date    string
	Changes []string
}

// CatalogVersionInfo is the remote view of the audio ID catalog.
type CatalogVersionInfo struct {
	Version      string
	TotalEntries int
	Changelog    []ChangelogEntry
}

// LocalCatalogState is the locally cached view of the catalog. The zero
// value means the catalog has never been downloaded.
type LocalCatalogState struct {
	Version      string
	TotalEntries int
}

// UpdateDecision is the derived outcome of one update check. It is never
// persisted.
type UpdateDecision struct {
	HasUpdate      bool
	RemoteVersion  string
	NewEntryCount  int
	ChangelogLines []string
}

// CheckForUpdate compares the remote catalog against the local state. The
// remote must carry a non-empty changelog whenever it is newer; an updated
// catalog without one is malformed feed content, not a defaultable gap.
func CheckForUpdate(remote CatalogVersionInfo, local LocalCatalogState) (UpdateDecision, error) {
	cmp, err := CompareVersions(remote.Version, local.Version)
	if err != nil {
		return UpdateDecision{}, err
	}

	decision := UpdateDecision{RemoteVersion: remote.Version}
	if cmp <= 0 {
		return decision, nil
	}

	if len(remote.Changelog) == 0 {
		return UpdateDecision{}, fmt.Errorf("catalog %s: %w", remote.Version, ErrEmptyChangelog)
	}

	decision.HasUpdate = true
	decision.NewEntryCount = remote.TotalEntries - local.TotalEntries
	if decision.NewEntryCount < 0 {
		decision.NewEntryCount = 0
	}
	decision.ChangelogLines = append([]string(nil), remote.Changelog[0].Changes...)
	return decision, nil
}
