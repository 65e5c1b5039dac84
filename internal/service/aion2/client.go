package aion2

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/aion2-character-go/internal/character"
	"github.com/kapu/aion2-character-go/internal/config"
	"github.com/kapu/aion2-character-go/internal/constants"
	"github.com/kapu/aion2-character-go/internal/dom"
	"github.com/kapu/aion2-character-go/internal/domain"
	"github.com/kapu/aion2-character-go/internal/metrics"
	"github.com/kapu/aion2-character-go/pkg/errors"
)

// Config is the read-only site configuration a Client runs with.
type Config struct {
	BaseURL string
	Origin  string
	Servers *domain.ServerTable

	PageSettle       time.Duration
	ActionSettle     time.Duration
	FilterSettle     time.Duration
	RankingTableWait time.Duration
}

func ConfigFrom(cfg *config.Config) Config {
	return Config{
		BaseURL:          cfg.Site.BaseURL,
		Origin:           cfg.Site.Origin,
		Servers:          cfg.Site.Servers,
		PageSettle:       cfg.Browser.PageSettle,
		ActionSettle:     cfg.Browser.ActionSettle,
		FilterSettle:     cfg.Browser.FilterSettle,
		RankingTableWait: cfg.Browser.RankingTableWait,
	}
}

// Client fetches character records from the AION2 site. Every top-level call
// acquires its own browser session and releases it before returning.
type Client struct {
	launcher  dom.Launcher
	assembler *character.Assembler
	cfg       Config
	logger    *zap.Logger
}

func NewClient(launcher dom.Launcher, assembler *character.Assembler, cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		launcher:  launcher,
		assembler: assembler,
		cfg:       cfg,
		logger:    logger,
	}
}

// withSession runs fn on a fresh session and always closes it.
func (c *Client) withSession(ctx context.Context, fn func(dom.Session) error) error {
	session, err := c.launcher.Launch(ctx)
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			c.logger.Warn("Browser session close failed", zap.Error(closeErr))
		}
	}()
	return fn(session)
}

// SearchURL is the character search view filtered by server and name.
// Unrecognized servers resolve to the default server.
func (c *Client) SearchURL(server, name string) string {
	return fmt.Sprintf("%s/characters/index?serverId=%s&characterName=%s",
		c.cfg.BaseURL,
		url.QueryEscape(c.cfg.Servers.Resolve(server)),
		url.QueryEscape(name),
	)
}

// GetCharacter searches for name on server, follows the first matching result
// to its detail view and assembles the record. When no result row matches,
// the loaded view is parsed directly. Navigation and session failures are
// returned after the session is released.
func (c *Client) GetCharacter(ctx context.Context, server, name, classHint string) (*domain.CharacterRecord, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewValidationError("character name is required", "name", name)
	}

	start := time.Now()
	id := domain.Identity{Server: server, Name: name, ClassHint: classHint}
	c.logger.Info("Fetching character",
		zap.String("server", server),
		zap.String("name", name),
	)

	var record *domain.CharacterRecord
	err := c.withSession(ctx, func(s dom.Session) error {
		searchURL := c.SearchURL(server, name)
		if err := c.load(ctx, s, searchURL); err != nil {
			return err
		}

		detailURL, found, err := c.findDetailURL(ctx, s, name)
		if err != nil {
			return err
		}
		if found {
			c.logger.Debug("Character found, opening detail view", zap.String("url", detailURL))
			if err := c.load(ctx, s, detailURL); err != nil {
				return err
			}
		} else {
			c.logger.Warn("Character link not found, parsing current view",
				zap.String("name", name),
				zap.String("url", searchURL),
			)
		}

		record = c.assembler.Assemble(ctx, s, id)
		return nil
	})

	metrics.CharacterFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CharacterFetches.WithLabelValues("error").Inc()
		c.logger.Error("Character fetch failed",
			zap.String("server", server),
			zap.String("name", name),
			zap.Error(err),
		)
		return nil, err
	}
	metrics.CharacterFetches.WithLabelValues("ok").Inc()
	return record, nil
}

// GetCharacterByURL parses a known detail URL. server and name only fill in
// what the page itself does not show.
func (c *Client) GetCharacterByURL(ctx context.Context, detailURL, server, name string) (*domain.CharacterRecord, error) {
	parsed, err := url.Parse(strings.TrimSpace(detailURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, errors.NewValidationError("a http(s) detail url is required", "url", detailURL)
	}

	id := domain.Identity{Server: domain.OrUnknown(server), Name: domain.OrUnknown(name)}
	c.logger.Info("Fetching character by url", zap.String("url", parsed.String()))

	var record *domain.CharacterRecord
	err = c.withSession(ctx, func(s dom.Session) error {
		if err := c.load(ctx, s, parsed.String()); err != nil {
			return err
		}
		record = c.assembler.Assemble(ctx, s, id)
		return nil
	})
	if err != nil {
		metrics.CharacterFetches.WithLabelValues("error").Inc()
		c.logger.Error("Direct character fetch failed", zap.String("url", detailURL), zap.Error(err))
		return nil, err
	}
	metrics.CharacterFetches.WithLabelValues("ok").Inc()
	return record, nil
}

// load navigates and then waits for client-side rendering to settle.
func (c *Client) load(ctx context.Context, page dom.Page, target string) error {
	if err := page.Navigate(ctx, target); err != nil {
		return err
	}
	return page.Wait(ctx, c.cfg.PageSettle)
}

// findDetailURL locates the first search result row containing name.
func (c *Client) findDetailURL(ctx context.Context, page dom.Page, name string) (string, bool, error) {
	rows, err := page.Find(ctx, constants.SearchSelectors.ResultRow)
	if err != nil {
		return "", false, err
	}
	rows, err = rows.HasText(ctx, name)
	if err != nil {
		return "", false, err
	}
	if rows.Len() == 0 {
		return "", false, nil
	}

	href, ok, err := dom.FirstAttr(ctx, rows.At(0), constants.SearchSelectors.ResultLink, "href")
	if err != nil {
		return "", false, err
	}
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return "", false, nil
	}

	detailURL, err := c.absoluteURL(href)
	if err != nil {
		return "", false, err
	}
	return detailURL, true, nil
}

func (c *Client) absoluteURL(href string) (string, error) {
	base, err := url.Parse(c.cfg.Origin + "/")
	if err != nil {
		return "", fmt.Errorf("invalid origin %q: %w", c.cfg.Origin, err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid result link %q: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}
