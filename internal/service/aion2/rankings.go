package aion2

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/aion2-character-go/internal/constants"
	"github.com/kapu/aion2-character-go/internal/dom"
	"github.com/kapu/aion2-character-go/internal/domain"
	"github.com/kapu/aion2-character-go/internal/metrics"
	"github.com/kapu/aion2-character-go/pkg/errors"
)

// AbyssQuery selects a leaderboard view. Empty Server or Race leaves that
// filter untouched.
type AbyssQuery struct {
	Server string
	Race   string
	Limit  int
}

func (q AbyssQuery) validate() error {
	if q.Limit <= 0 {
		return errors.NewValidationError("limit must be positive", "limit", q.Limit)
	}
	if q.Limit > constants.BatchConfig.MaxLimit {
		return errors.NewValidationError("limit is too large", "limit", q.Limit)
	}
	return nil
}

// RecordHandler receives each successfully fetched record in target order.
// Returning an error stops the batch.
type RecordHandler func(record *domain.CharacterRecord) error

// CollectAbyssTargets reads up to q.Limit (name, class hint) pairs from the
// abyss leaderboard, in table order. Rows without a name are skipped. Failures
// after the browser is up are logged and the targets read so far returned.
func (c *Client) CollectAbyssTargets(ctx context.Context, q AbyssQuery) ([]domain.RankingTarget, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	c.logger.Info("Fetching abyss ranking list",
		zap.String("server", q.Server),
		zap.String("race", q.Race),
		zap.Int("limit", q.Limit),
	)

	targets := []domain.RankingTarget{}
	err := c.withSession(ctx, func(s dom.Session) error {
		if err := c.readAbyssTargets(ctx, s, q, &targets); err != nil {
			c.logger.Error("Ranking list fetch failed",
				zap.Int("collected", len(targets)),
				zap.Error(err),
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RankingTargetsCollected.Add(float64(len(targets)))
	return targets, nil
}

func (c *Client) readAbyssTargets(ctx context.Context, page dom.Page, q AbyssQuery, targets *[]domain.RankingTarget) error {
	sel := constants.RankingTableSelectors

	if err := page.Navigate(ctx, c.cfg.BaseURL+"/ranking/abyss"); err != nil {
		return err
	}
	if err := page.WaitFor(ctx, sel.Row, c.cfg.RankingTableWait); err != nil {
		return err
	}
	if err := c.applyFilters(ctx, page, q); err != nil {
		return err
	}

	rows, err := page.Find(ctx, sel.Row)
	if err != nil {
		return err
	}
	count := rows.Len()
	if count > q.Limit {
		count = q.Limit
	}
	c.logger.Info("Ranking rows found",
		zap.Int("rows", rows.Len()),
		zap.Int("processing", count),
	)

	for i := 0; i < count; i++ {
		row := rows.At(i)

		name, _, err := dom.FirstText(ctx, row, sel.Name)
		if err != nil {
			return err
		}

		var classHint string
		cells, err := row.Find(ctx, sel.Cell)
		if err != nil {
			return err
		}
		if cells.Len() > constants.RankingClassColumn {
			text, err := cells.At(constants.RankingClassColumn).Text(ctx)
			if err != nil {
				return err
			}
			classHint = strings.TrimSpace(text)
		}

		if name != "" {
			*targets = append(*targets, domain.RankingTarget{Name: name, ClassHint: classHint})
		}
	}
	return nil
}

// applyFilters opens the filter dropdown when present and picks the race and
// then the server option.
func (c *Client) applyFilters(ctx context.Context, page dom.Page, q AbyssQuery) error {
	sel := constants.RankingTableSelectors

	toggle, ok, err := dom.First(ctx, page, sel.FilterToggle)
	if err != nil || !ok {
		return err
	}
	if err := toggle.Click(ctx); err != nil {
		return err
	}
	if err := page.Wait(ctx, c.cfg.ActionSettle); err != nil {
		return err
	}

	if err := c.pickOption(ctx, page, sel.RaceOption, q.Race, c.cfg.ActionSettle); err != nil {
		return err
	}
	return c.pickOption(ctx, page, sel.ServerOption, q.Server, c.cfg.FilterSettle)
}

func (c *Client) pickOption(ctx context.Context, page dom.Page, selector, label string, settle time.Duration) error {
	if strings.TrimSpace(label) == "" {
		return nil
	}

	options, err := page.Find(ctx, selector)
	if err != nil {
		return err
	}
	options, err = options.HasText(ctx, label)
	if err != nil {
		return err
	}
	if options.Len() == 0 {
		c.logger.Warn("Ranking filter option not found", zap.String("label", label))
		return nil
	}
	if err := options.At(0).Click(ctx); err != nil {
		return err
	}
	return page.Wait(ctx, settle)
}

// FetchAbyssRankings collects leaderboard targets and fetches each one's
// detail record sequentially. Targets whose fetch fails are left out.
func (c *Client) FetchAbyssRankings(ctx context.Context, q AbyssQuery) ([]*domain.CharacterRecord, error) {
	records := []*domain.CharacterRecord{}
	err := c.StreamAbyssRankings(ctx, q, func(record *domain.CharacterRecord) error {
		records = append(records, record)
		return nil
	})
	return records, err
}

// StreamAbyssRankings is FetchAbyssRankings delivering records as they are built.
func (c *Client) StreamAbyssRankings(ctx context.Context, q AbyssQuery, handle RecordHandler) error {
	targets, err := c.CollectAbyssTargets(ctx, q)
	if err != nil {
		return err
	}
	return c.FetchDetails(ctx, q.Server, targets, handle)
}

// FetchDetails runs GetCharacter for each target in order, with the target's
// class label as the hint. One session per target; a failed target is logged
// and skipped. Only a cancelled ctx or a handler error ends the batch early.
func (c *Client) FetchDetails(ctx context.Context, server string, targets []domain.RankingTarget, handle RecordHandler) error {
	fetched := 0
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.logger.Info("Fetching ranker details",
			zap.String("name", target.Name),
			zap.String("class", target.ClassHint),
		)
		record, err := c.GetCharacter(ctx, server, target.Name, target.ClassHint)
		if err != nil {
			metrics.BatchTargetsDropped.Inc()
			c.logger.Error("Failed to fetch ranker details",
				zap.String("name", target.Name),
				zap.Error(err),
			)
			continue
		}

		fetched++
		if err := handle(record); err != nil {
			return err
		}
	}

	c.logger.Info("Ranking batch completed",
		zap.Int("targets", len(targets)),
		zap.Int("fetched", fetched),
	)
	return nil
}
