// Package notifier runs the update-check and announcement polling cycles.
package notifier

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"updatewatch/internal/domain"
	"updatewatch/internal/infra/feed"
)

// Cycle outcomes reported to metrics.
const (
	OutcomeSuccess     = "success"
	OutcomeFetchFailed = "fetch_failed"
	OutcomePartial     = "partial"
)

// FeedSource is the feed retrieval surface the notifier depends on,
// satisfied by *feed.Client.
type FeedSource interface {
	FetchAnnouncements(ctx context.Context) (*feed.AnnouncementFeed, error)
	FetchCatalog(ctx context.Context) (*feed.CatalogFeed, error)
	DownloadCatalog(ctx context.Context, rawURL string) ([]byte, feed.CatalogSnapshot, error)
}

// CycleResult summarizes one completed poll cycle.
type CycleResult struct {
	Decision      domain.UpdateDecision
	Choice        domain.UserChoice
	Announcements []domain.Announcement
	FeedInterval  time.Duration
}

type Notifier struct {
	logger    *zap.Logger
	feeds     FeedSource
	store     domain.StateStore
	presenter domain.Presenter
	metrics   domain.Metrics
}

type Options struct {
	Logger    *zap.Logger
	Feeds     FeedSource
	Store     domain.StateStore
	Presenter domain.Presenter
	Metrics   domain.Metrics
}

func New(opts Options) *Notifier {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	return &Notifier{
		logger:    logger.Named("notifier"),
		feeds:     opts.Feeds,
		store:     opts.Store,
		presenter: opts.Presenter,
		metrics:   metrics,
	}
}

// RunCycle performs one poll cycle: catalog update check first, then
// announcements. A failure in either half is reported to the presenter and
// does not abort the other half or future cycles.
func (n *Notifier) RunCycle(ctx context.Context) (CycleResult, error) {
	started := time.Now()
	logger := n.logger.With(zap.String("cycle_id", uuid.NewString()))

	var result CycleResult
	updateErr := n.runUpdateCheck(ctx, logger, &result)
	announceErr := n.runAnnouncements(ctx, logger, &result)

	outcome := OutcomeSuccess
	switch {
	case updateErr != nil && announceErr != nil:
		outcome = OutcomeFetchFailed
	case updateErr != nil || announceErr != nil:
		outcome = OutcomePartial
	}
	n.metrics.ObserveCycle(outcome, time.Since(started))

	if updateErr != nil || announceErr != nil {
		n.presenter.NotifyFailure(ctx, "Unable to check for updates. Will retry on the next cycle.")
	}
	return result, errors.Join(updateErr, announceErr)
}

// Dismiss records an announcement dismissal so it never reappears.
func (n *Notifier) Dismiss(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.store.RecordDismissal(id); err != nil {
		return domain.Wrap(domain.CodeStoreDegraded, "notifier.Dismiss", err)
	}
	n.metrics.ObserveDismissal()
	n.logger.Info("announcement dismissed", zap.String("id", id))
	return nil
}

func (n *Notifier) runUpdateCheck(ctx context.Context, logger *zap.Logger, result *CycleResult) error {
	fetchStart := time.Now()
	catalog, err := n.feeds.FetchCatalog(ctx)
	n.metrics.ObserveFetch("catalog", time.Since(fetchStart), err)
	if err != nil {
		logger.Warn("catalog fetch failed", zap.Error(err))
		return err
	}
	if !catalog.Metadata.CheckForUpdates {
		logger.Debug("catalog feed disables update checks")
		return nil
	}

	local := n.localState(logger)

	decision, err := domain.CheckForUpdate(catalog.VersionInfo(), local)
	if err != nil {
		logger.Warn("update detection failed", zap.Error(err))
		return err
	}
	result.Decision = decision
	n.metrics.SetUpdateAvailable(decision.HasUpdate)

	if !decision.HasUpdate {
		logger.Debug("catalog is current",
			zap.String("local_version", local.Version),
			zap.String("remote_version", decision.RemoteVersion),
		)
		return nil
	}

	optedOut, err := n.store.AutoUpdateDisabled()
	if err != nil {
		logger.Warn("opt-out lookup failed, prompting anyway", zap.Error(err))
	}
	if optedOut {
		logger.Info("update available but prompts are disabled",
			zap.String("remote_version", decision.RemoteVersion),
		)
		return nil
	}

	choice, err := n.presenter.PromptUpdate(ctx, decision, local)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			choice = domain.ChoiceDefer
		} else {
			logger.Warn("update prompt failed", zap.Error(err))
			return err
		}
	}
	result.Choice = choice
	n.metrics.ObserveUserChoice(choice)

	return n.applyChoice(ctx, logger, choice, catalog)
}

func (n *Notifier) applyChoice(ctx context.Context, logger *zap.Logger, choice domain.UserChoice, catalog *feed.CatalogFeed) error {
	switch choice {
	case domain.ChoiceAccept:
		blob, snapshot, err := n.feeds.DownloadCatalog(ctx, catalog.Metadata.RawURL)
		if err != nil {
			logger.Warn("catalog download failed", zap.Error(err))
			return err
		}
		state := domain.LocalCatalogState{Version: snapshot.Version, TotalEntries: snapshot.TotalIDs}
		if err := n.store.SaveCatalog(blob, state); err != nil {
			// Degraded mode: the session keeps working, state just
			// will not survive a restart.
			logger.Warn("catalog persisted in memory only", zap.Error(err))
		}
		logger.Info("catalog updated",
			zap.String("version", snapshot.Version),
			zap.Int("total_ids", snapshot.TotalIDs),
		)
		n.metrics.SetUpdateAvailable(false)
	case domain.ChoiceDisable:
		if err := n.store.SetAutoUpdateDisabled(true); err != nil {
			logger.Warn("opt-out not persisted", zap.Error(err))
		}
		logger.Info("periodic update prompts disabled")
	case domain.ChoiceDefer, domain.UserChoice(""):
		logger.Debug("update deferred")
	default:
		logger.Warn("unknown update choice ignored", zap.String("choice", string(choice)))
	}
	return nil
}

func (n *Notifier) runAnnouncements(ctx context.Context, logger *zap.Logger, result *CycleResult) error {
	fetchStart := time.Now()
	announcementFeed, err := n.feeds.FetchAnnouncements(ctx)
	n.metrics.ObserveFetch("announcements", time.Since(fetchStart), err)
	if err != nil {
		logger.Warn("announcement fetch failed", zap.Error(err))
		return err
	}

	if hours := announcementFeed.Metadata.FetchIntervalHours; hours >= domain.MinFeedIntervalHours && hours <= domain.MaxFeedIntervalHours {
		result.FeedInterval = time.Duration(hours) * time.Hour
	}

	dismissed, err := n.store.Dismissed()
	if err != nil {
		logger.Warn("dismissed lookup failed, showing all announcements", zap.Error(err))
		dismissed = nil
	}

	selected := domain.SelectAnnouncements(announcementFeed.DomainAnnouncements(), dismissed)
	result.Announcements = selected
	n.metrics.SetActiveAnnouncements(len(selected))

	if len(selected) == 0 {
		return nil
	}
	if err := n.presenter.ShowAnnouncements(ctx, selected); err != nil {
		logger.Warn("announcement rendering failed", zap.Error(err))
		return err
	}
	return nil
}

func (n *Notifier) localState(logger *zap.Logger) domain.LocalCatalogState {
	local, err := n.store.LocalCatalog()
	if err != nil {
		// Treat an unreadable store as a never-downloaded catalog for
		// this cycle; the user can still decline the prompt.
		logger.Warn("local catalog state unavailable", zap.Error(err))
		return domain.LocalCatalogState{}
	}
	return local
}
