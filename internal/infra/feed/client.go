package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	"updatewatch/internal/domain"
)

const defaultUserAgent = "updatewatch/0.1.0"

// Client retrieves the announcement and catalog feeds. Responses are always
// revalidated; nothing is served from an intermediary cache.
type Client struct {
	logger           *zap.Logger
	http             *http.Client
	announcementsURL string
	catalogURL       string
	userAgent        string
}

type ClientOptions struct {
	AnnouncementsURL string
	CatalogURL       string
	Timeout          time.Duration
	UserAgent        string
	Logger           *zap.Logger
}

func NewClient(opts ClientOptions) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Duration(domain.DefaultRequestTimeoutSeconds) * time.Second
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		logger:           logger.Named("feed"),
		http:             &http.Client{Timeout: timeout},
		announcementsURL: strings.TrimSpace(opts.AnnouncementsURL),
		catalogURL:       strings.TrimSpace(opts.CatalogURL),
		userAgent:        userAgent,
	}
}

// FetchAnnouncements retrieves and decodes the announcement feed.
func (c *Client) FetchAnnouncements(ctx context.Context) (*AnnouncementFeed, error) {
	const op = "feed.FetchAnnouncements"
	body, err := c.get(ctx, op, c.announcementsURL)
	if err != nil {
		return nil, err
	}
	var parsed AnnouncementFeed
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, domain.E(domain.CodeMalformedFeed, op, "decode announcement feed", err)
	}
	for _, announcement := range parsed.Announcements {
		if strings.TrimSpace(announcement.ID) == "" {
			return nil, domain.E(domain.CodeMalformedFeed, op, "announcement without id", nil)
		}
	}
	return &parsed, nil
}

// FetchCatalog retrieves and decodes the catalog version feed. The version
// must canonicalize as a semantic version before any comparison runs.
func (c *Client) FetchCatalog(ctx context.Context) (*CatalogFeed, error) {
	const op = "feed.FetchCatalog"
	body, err := c.get(ctx, op, c.catalogURL)
	if err != nil {
		return nil, err
	}
	var parsed CatalogFeed
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, domain.E(domain.CodeMalformedFeed, op, "decode catalog feed", err)
	}
	if !validVersion(parsed.Version) {
		return nil, domain.E(domain.CodeMalformedFeed, op,
			fmt.Sprintf("catalog version %q is not a semantic version", parsed.Version), nil)
	}
	if parsed.TotalIDs < 0 {
		return nil, domain.E(domain.CodeMalformedFeed, op,
			fmt.Sprintf("catalog total_ids is negative: %d", parsed.TotalIDs), nil)
	}
	return &parsed, nil
}

// DownloadCatalog fetches the full catalog blob for an accepted update and
// parses the version/size pair back out of it.
func (c *Client) DownloadCatalog(ctx context.Context, rawURL string) ([]byte, CatalogSnapshot, error) {
	const op = "feed.DownloadCatalog"
	target := strings.TrimSpace(rawURL)
	if target == "" {
		return nil, CatalogSnapshot{}, domain.E(domain.CodeInvalidArgument, op, "catalog raw_url is empty", nil)
	}
	body, err := c.get(ctx, op, target)
	if err != nil {
		return nil, CatalogSnapshot{}, err
	}
	var snapshot CatalogSnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, CatalogSnapshot{}, domain.E(domain.CodeMalformedFeed, op, "decode catalog blob", err)
	}
	if !validVersion(snapshot.Version) {
		return nil, CatalogSnapshot{}, domain.E(domain.CodeMalformedFeed, op,
			fmt.Sprintf("catalog blob version %q is not a semantic version", snapshot.Version), nil)
	}
	return body, snapshot, nil
}

func (c *Client) get(ctx context.Context, op, url string) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, domain.E(domain.CodeInvalidArgument, op, "feed url is not configured", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.E(domain.CodeInvalidArgument, op, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, domain.E(domain.CodeCanceled, op, "request canceled", ctxErr)
		}
		return nil, domain.E(domain.CodeUnavailable, op, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Debug("feed returned non-2xx status",
			zap.String("url", url),
			zap.String("status", resp.Status),
		)
		return nil, domain.E(domain.CodeUnavailable, op,
			fmt.Sprintf("unexpected status: %s", resp.Status), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.E(domain.CodeUnavailable, op, "read response body", err)
	}
	return body, nil
}

func validVersion(raw string) bool {
	value := strings.TrimSpace(raw)
	if value == "" {
		return false
	}
	if !strings.HasPrefix(value, "v") {
		value = "v" + value
	}
	return semver.Canonical(value) != ""
}
