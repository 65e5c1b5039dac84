package lookup

import (
	"context"
	stderrors "errors"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/aion2-character-go/internal/domain"
	"github.com/kapu/aion2-character-go/internal/metrics"
	"github.com/kapu/aion2-character-go/internal/service/aion2"
	"github.com/kapu/aion2-character-go/internal/util"
	"github.com/kapu/aion2-character-go/pkg/errors"
)

// Scraper is the site-facing part of the lookup. *aion2.Client implements it.
type Scraper interface {
	GetCharacter(ctx context.Context, server, name, classHint string) (*domain.CharacterRecord, error)
	GetCharacterByURL(ctx context.Context, detailURL, server, name string) (*domain.CharacterRecord, error)
	CollectAbyssTargets(ctx context.Context, q aion2.AbyssQuery) ([]domain.RankingTarget, error)
	StreamAbyssRankings(ctx context.Context, q aion2.AbyssQuery, handle aion2.RecordHandler) error
}

type RecordCache interface {
	GetRecord(ctx context.Context, server, name string) (*domain.CharacterRecord, error)
	SetRecord(ctx context.Context, server, name string, record *domain.CharacterRecord) error
}

type RecordStore interface {
	Upsert(ctx context.Context, record *domain.CharacterRecord) error
}

// Service is the cache -> scrape -> persist front of the scraper. Cache and
// store are optional; their failures are logged and never fail a lookup.
type Service struct {
	scraper Scraper
	cache   RecordCache
	store   RecordStore
	breaker *util.CircuitBreaker
	logger  *zap.Logger
}

// NewService accepts nil cache and store. A nil breaker disables
// short-circuiting.
func NewService(scraper Scraper, cache RecordCache, store RecordStore, breaker *util.CircuitBreaker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scraper: scraper,
		cache:   cache,
		store:   store,
		breaker: breaker,
		logger:  logger,
	}
}

// Lookup returns the cached record for (server, name) unless forceRefresh is
// set, otherwise scrapes, stores and caches a fresh one.
func (s *Service) Lookup(ctx context.Context, server, name, classHint string, forceRefresh bool) (*domain.CharacterRecord, error) {
	server = strings.TrimSpace(server)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("character name is required", "name", name)
	}

	if s.cache != nil && !forceRefresh {
		cached, err := s.cache.GetRecord(ctx, server, name)
		if err != nil {
			s.logger.Warn("Record cache read failed", zap.String("name", name), zap.Error(err))
		} else if cached != nil {
			metrics.CacheHits.Inc()
			s.logger.Debug("Record cache hit", zap.String("server", server), zap.String("name", name))
			return cached, nil
		}
	}
	metrics.CacheMisses.Inc()

	record, err := s.guarded(ctx, func() (*domain.CharacterRecord, error) {
		return s.scraper.GetCharacter(ctx, server, name, classHint)
	})
	if err != nil {
		return nil, err
	}

	s.keep(ctx, server, name, record)
	return record, nil
}

// LookupByURL always scrapes. The result is cached under the identity the
// page resolved to.
func (s *Service) LookupByURL(ctx context.Context, detailURL, server, name string) (*domain.CharacterRecord, error) {
	record, err := s.guarded(ctx, func() (*domain.CharacterRecord, error) {
		return s.scraper.GetCharacterByURL(ctx, detailURL, server, name)
	})
	if err != nil {
		return nil, err
	}

	s.keep(ctx, record.Server, record.Name, record)
	return record, nil
}

func (s *Service) CollectAbyssTargets(ctx context.Context, q aion2.AbyssQuery) ([]domain.RankingTarget, error) {
	if err := s.allow(); err != nil {
		return nil, err
	}
	return s.scraper.CollectAbyssTargets(ctx, q)
}

// StreamAbyss runs the ranking batch, storing and caching each record before
// handing it to handle.
func (s *Service) StreamAbyss(ctx context.Context, q aion2.AbyssQuery, handle aion2.RecordHandler) error {
	if err := s.allow(); err != nil {
		return err
	}
	return s.scraper.StreamAbyssRankings(ctx, q, func(record *domain.CharacterRecord) error {
		s.keep(ctx, q.Server, record.Name, record)
		return handle(record)
	})
}

func (s *Service) SyncAbyss(ctx context.Context, q aion2.AbyssQuery) ([]*domain.CharacterRecord, error) {
	records := []*domain.CharacterRecord{}
	err := s.StreamAbyss(ctx, q, func(record *domain.CharacterRecord) error {
		records = append(records, record)
		return nil
	})
	return records, err
}

// BreakerStatus is nil when no breaker is configured.
func (s *Service) BreakerStatus() *util.CircuitBreakerStatus {
	if s.breaker == nil {
		return nil
	}
	status := s.breaker.GetStatus()
	return &status
}

func (s *Service) allow() error {
	if s.breaker != nil && !s.breaker.CanExecute() {
		return errors.NewUnavailableError("character site is temporarily unavailable", nil)
	}
	return nil
}

// guarded runs one scrape through the breaker. Caller mistakes and
// cancellations are not site failures.
func (s *Service) guarded(ctx context.Context, scrape func() (*domain.CharacterRecord, error)) (*domain.CharacterRecord, error) {
	if err := s.allow(); err != nil {
		return nil, err
	}

	record, err := scrape()
	if s.breaker == nil {
		return record, err
	}

	var validationErr *errors.ValidationError
	switch {
	case err == nil:
		s.breaker.RecordSuccess()
	case stderrors.As(err, &validationErr), ctx.Err() != nil:
	default:
		s.breaker.RecordFailure(0)
	}
	return record, err
}

// keep persists and caches a fresh record. Failures only log.
func (s *Service) keep(ctx context.Context, server, name string, record *domain.CharacterRecord) {
	if s.store != nil {
		if err := s.store.Upsert(ctx, record); err != nil {
			metrics.StoreFailures.Inc()
			s.logger.Warn("Record store failed",
				zap.String("server", record.Server),
				zap.String("name", record.Name),
				zap.Error(err),
			)
		}
	}
	if s.cache != nil {
		if err := s.cache.SetRecord(ctx, server, name, record); err != nil {
			s.logger.Warn("Record cache write failed", zap.String("name", name), zap.Error(err))
		}
	}
}
