package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"updatewatch/internal/domain"
	"updatewatch/internal/infra/feed"
	"updatewatch/internal/infra/store"
)

type fakeFeeds struct {
	mu sync.Mutex

	announcements    *feed.AnnouncementFeed
	announcementsErr error
	catalog          *feed.CatalogFeed
	catalogErr       error
	blob             []byte
	snapshot         feed.CatalogSnapshot
	downloadErr      error

	downloads int
	// When set, FetchCatalog blocks until released. Used to hold a cycle
	// in flight.
	block chan struct{}
}

func (f *fakeFeeds) FetchAnnouncements(context.Context) (*feed.AnnouncementFeed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.announcementsErr != nil {
		return nil, f.announcementsErr
	}
	if f.announcements == nil {
		return &feed.AnnouncementFeed{}, nil
	}
	return f.announcements, nil
}

func (f *fakeFeeds) FetchCatalog(context.Context) (*feed.CatalogFeed, error) {
	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	if f.catalog == nil {
		return &feed.CatalogFeed{Version: "1.0.0"}, nil
	}
	return f.catalog, nil
}

func (f *fakeFeeds) DownloadCatalog(context.Context, string) ([]byte, feed.CatalogSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads++
	if f.downloadErr != nil {
		return nil, feed.CatalogSnapshot{}, f.downloadErr
	}
	return f.blob, f.snapshot, nil
}

type scriptedPresenter struct {
	mu sync.Mutex

	choice    domain.UserChoice
	promptErr error

	prompts   int
	decisions []domain.UpdateDecision
	shown     [][]domain.Announcement
	failures  []string
}

func (p *scriptedPresenter) PromptUpdate(_ context.Context, decision domain.UpdateDecision, _ domain.LocalCatalogState) (domain.UserChoice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts++
	p.decisions = append(p.decisions, decision)
	return p.choice, p.promptErr
}

func (p *scriptedPresenter) ShowAnnouncements(_ context.Context, announcements []domain.Announcement) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shown = append(p.shown, announcements)
	return nil
}

func (p *scriptedPresenter) NotifyFailure(_ context.Context, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = append(p.failures, message)
}

func updatableCatalog() *feed.CatalogFeed {
	return &feed.CatalogFeed{
		Version:  "2.5.0",
		TotalIDs: 120,
		Changelog: []feed.ChangelogRecord{
			{Version: "2.5.0", Date: "2026-08-18", Changes: []string{"Added 20 ids"}},
		},
		Metadata: feed.CatalogFeedOptions{
			RawURL:          "https://example.test/audio-ids.json",
			CheckForUpdates: true,
		},
	}
}

func newTestNotifier(t *testing.T, feeds *fakeFeeds, presenter *scriptedPresenter) (*Notifier, *store.Memory) {
	t.Helper()
	memory := store.NewMemory()
	n := New(Options{
		Feeds:     feeds,
		Store:     memory,
		Presenter: presenter,
	})
	return n, memory
}

func TestRunCycle_AcceptDownloadsAndPersists(t *testing.T) {
	blob := []byte(`{"version":"2.5.0","total_ids":120}`)
	feeds := &fakeFeeds{
		catalog:  updatableCatalog(),
		blob:     blob,
		snapshot: feed.CatalogSnapshot{Version: "2.5.0", TotalIDs: 120},
	}
	presenter := &scriptedPresenter{choice: domain.ChoiceAccept}
	n, memory := newTestNotifier(t, feeds, presenter)

	result, err := n.RunCycle(context.Background())
	require.NoError(t, err)
	require.True(t, result.Decision.HasUpdate)
	require.Equal(t, 120, result.Decision.NewEntryCount)
	require.Equal(t, domain.ChoiceAccept, result.Choice)
	require.Equal(t, 1, feeds.downloads)

	local, err := memory.LocalCatalog()
	require.NoError(t, err)
	require.Equal(t, "2.5.0", local.Version)
	require.Equal(t, 120, local.TotalEntries)
}

func TestRunCycle_DeferLeavesStateAlone(t *testing.T) {
	feeds := &fakeFeeds{catalog: updatableCatalog()}
	presenter := &scriptedPresenter{choice: domain.ChoiceDefer}
	n, memory := newTestNotifier(t, feeds, presenter)

	_, err := n.RunCycle(context.Background())
	require.NoError(t, err)
	require.Zero(t, feeds.downloads)

	local, err := memory.LocalCatalog()
	require.NoError(t, err)
	require.Equal(t, domain.LocalCatalogState{}, local)
}

func TestRunCycle_DisableWritesOptOutAndSilencesPrompts(t *testing.T) {
	feeds := &fakeFeeds{catalog: updatableCatalog()}
	presenter := &scriptedPresenter{choice: domain.ChoiceDisable}
	n, memory := newTestNotifier(t, feeds, presenter)

	_, err := n.RunCycle(context.Background())
	require.NoError(t, err)

	disabled, err := memory.AutoUpdateDisabled()
	require.NoError(t, err)
	require.True(t, disabled)

	// Second cycle: update still available, but no prompt.
	_, err = n.RunCycle(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, presenter.prompts)
}

func TestRunCycle_NoUpdateNoPrompt(t *testing.T) {
	feeds := &fakeFeeds{
		catalog:  updatableCatalog(),
		blob:     []byte(`{"version":"2.5.0","total_ids":120}`),
		snapshot: feed.CatalogSnapshot{Version: "2.5.0", TotalIDs: 120},
	}
	presenter := &scriptedPresenter{choice: domain.ChoiceAccept}
	n, _ := newTestNotifier(t, feeds, presenter)

	_, err := n.RunCycle(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, presenter.prompts)

	// Catalog now current; no further prompt.
	_, err = n.RunCycle(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, presenter.prompts)
}

func TestRunCycle_FeedDisablesUpdateChecks(t *testing.T) {
	catalog := updatableCatalog()
	catalog.Metadata.CheckForUpdates = false
	feeds := &fakeFeeds{catalog: catalog}
	presenter := &scriptedPresenter{choice: domain.ChoiceAccept}
	n, _ := newTestNotifier(t, feeds, presenter)

	result, err := n.RunCycle(context.Background())
	require.NoError(t, err)
	require.False(t, result.Decision.HasUpdate)
	require.Zero(t, presenter.prompts)
}

func TestRunCycle_EmptyChangelogIsMalformedNotDefaulted(t *testing.T) {
	catalog := updatableCatalog()
	catalog.Changelog = nil
	feeds := &fakeFeeds{catalog: catalog}
	presenter := &scriptedPresenter{}
	n, _ := newTestNotifier(t, feeds, presenter)

	_, err := n.RunCycle(context.Background())
	require.ErrorIs(t, err, domain.ErrEmptyChangelog)
	require.Zero(t, presenter.prompts)
	require.Len(t, presenter.failures, 1)
}

func TestRunCycle_CatalogFailureStillShowsAnnouncements(t *testing.T) {
	feeds := &fakeFeeds{
		catalogErr: domain.E(domain.CodeUnavailable, "feed.FetchCatalog", "boom", nil),
		announcements: &feed.AnnouncementFeed{
			Announcements: []feed.AnnouncementRecord{
				{ID: "a", Type: "info", Priority: "high"},
			},
		},
	}
	presenter := &scriptedPresenter{}
	n, _ := newTestNotifier(t, feeds, presenter)

	result, err := n.RunCycle(context.Background())
	require.Error(t, err)
	require.Len(t, result.Announcements, 1)
	require.Len(t, presenter.shown, 1)
	require.Len(t, presenter.failures, 1)
}

func TestRunCycle_AnnouncementSelection(t *testing.T) {
	feeds := &fakeFeeds{
		catalog: &feed.CatalogFeed{Version: "1.0.0"},
		announcements: &feed.AnnouncementFeed{
			Announcements: []feed.AnnouncementRecord{
				{ID: "low-1", Priority: "low"},
				{ID: "high-1", Priority: "high"},
				{ID: "dismissed-1", Priority: "high"},
				{ID: "med-1", Priority: "medium"},
			},
			Metadata: feed.AnnouncementMetadata{FetchIntervalHours: 6},
		},
	}
	presenter := &scriptedPresenter{}
	n, memory := newTestNotifier(t, feeds, presenter)

	_, err := memory.RecordDismissal("dismissed-1")
	require.NoError(t, err)

	result, err := n.RunCycle(context.Background())
	require.NoError(t, err)

	var order []string
	for _, announcement := range result.Announcements {
		order = append(order, announcement.ID)
	}
	require.Equal(t, []string{"high-1", "med-1", "low-1"}, order)
	require.Equal(t, 6, int(result.FeedInterval.Hours()))
}

func TestRunCycle_CanceledPromptIsDefer(t *testing.T) {
	feeds := &fakeFeeds{catalog: updatableCatalog()}
	presenter := &scriptedPresenter{promptErr: context.Canceled}
	n, memory := newTestNotifier(t, feeds, presenter)

	result, err := n.RunCycle(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.ChoiceDefer, result.Choice)
	require.Zero(t, feeds.downloads)

	disabled, err := memory.AutoUpdateDisabled()
	require.NoError(t, err)
	require.False(t, disabled)
}

func TestDismiss(t *testing.T) {
	feeds := &fakeFeeds{}
	presenter := &scriptedPresenter{}
	n, memory := newTestNotifier(t, feeds, presenter)

	require.NoError(t, n.Dismiss(context.Background(), "old-news"))

	dismissed, err := memory.Dismissed()
	require.NoError(t, err)
	require.True(t, dismissed.Contains("old-news"))
}

func TestDismiss_StoreFailure(t *testing.T) {
	n := New(Options{
		Feeds:     &fakeFeeds{},
		Store:     failingStore{},
		Presenter: &scriptedPresenter{},
	})

	err := n.Dismiss(context.Background(), "x")
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeStoreDegraded, code)
}

type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) LocalCatalog() (domain.LocalCatalogState, error) {
	return domain.LocalCatalogState{}, errStoreDown
}
func (failingStore) SaveCatalog([]byte, domain.LocalCatalogState) error { return errStoreDown }
func (failingStore) Dismissed() (domain.DismissalSet, error)            { return nil, errStoreDown }
func (failingStore) RecordDismissal(string) (domain.DismissalSet, error) {
	return nil, errStoreDown
}
func (failingStore) AutoUpdateDisabled() (bool, error) { return false, errStoreDown }
func (failingStore) SetAutoUpdateDisabled(bool) error  { return errStoreDown }
func (failingStore) Close() error                      { return nil }

func TestRunCycle_DegradedStoreStillPrompts(t *testing.T) {
	feeds := &fakeFeeds{
		catalog:  updatableCatalog(),
		blob:     []byte(`{"version":"2.5.0","total_ids":120}`),
		snapshot: feed.CatalogSnapshot{Version: "2.5.0", TotalIDs: 120},
	}
	presenter := &scriptedPresenter{choice: domain.ChoiceAccept}
	n := New(Options{
		Feeds:     feeds,
		Store:     failingStore{},
		Presenter: presenter,
	})

	_, err := n.RunCycle(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, presenter.prompts)
	require.Equal(t, 1, feeds.downloads)
}
