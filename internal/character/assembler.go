package character

import (
	"context"
	"strings"
	"time"

	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"github.com/kapu/aion2-character-go/internal/dom"
	"github.com/kapu/aion2-character-go/internal/domain"
	"github.com/kapu/aion2-character-go/internal/metrics"
	"github.com/kapu/aion2-character-go/internal/parser"
	"github.com/kapu/aion2-character-go/internal/util"
)

// ResolveClass prefers the class read from the page. A missing or sentinel
// page value falls back to the hint, then to the sentinel.
func ResolveClass(pageClass, hint string) string {
	if !domain.IsUnresolved(pageClass) {
		return strings.TrimSpace(pageClass)
	}
	if !domain.IsUnresolved(hint) {
		return strings.TrimSpace(hint)
	}
	return domain.Unknown
}

// Assembler runs every section parser against a loaded page and merges the
// results into one record. It never fails: call-level problems produce the
// fallback record instead.
type Assembler struct {
	settle time.Duration
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Assembler)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAssembler builds an assembler. settle is waited after the stats expand
// click and the pet/wings tab switch.
func NewAssembler(settle time.Duration, logger *zap.Logger, opts ...Option) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Assembler{
		settle: settle,
		logger: logger,
		now:    util.NowKST,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Assembler) Assemble(ctx context.Context, page dom.Page, id domain.Identity) *domain.CharacterRecord {
	var (
		record  *domain.CharacterRecord
		err     error
		catcher panics.Catcher
	)
	catcher.Try(func() {
		record, err = a.assemble(ctx, page, id)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		err = recovered.AsError()
	}

	if err != nil || record == nil {
		a.logger.Error("Character parse failed, returning fallback record",
			zap.String("server", id.Server),
			zap.String("name", id.Name),
			zap.Error(err),
		)
		metrics.FallbackRecords.Inc()
		return domain.FallbackRecord(id, a.now())
	}
	return record
}

func (a *Assembler) assemble(ctx context.Context, page dom.Page, id domain.Identity) (*domain.CharacterRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := parser.Options{ActionSettle: a.settle, Logger: a.logger}
	var degraded []string

	profile := unwrap(parser.SectionProfile, parser.ParseProfile(ctx, page, opts), &degraded)
	stats := unwrap(parser.SectionStats, parser.ParseStats(ctx, page, opts), &degraded)
	equipment := unwrap(parser.SectionEquipment, parser.ParseEquipment(ctx, page, opts), &degraded)
	petWings := unwrap(parser.SectionPetWings, parser.ParsePetWings(ctx, page, opts), &degraded)
	titles := unwrap(parser.SectionTitles, parser.ParseTitles(ctx, page, opts), &degraded)
	ranking := unwrap(parser.SectionRanking, parser.ParseRanking(ctx, page, opts), &degraded)
	skills := unwrap(parser.SectionSkills, parser.ParseSkills(ctx, page, opts), &degraded)
	stigma := unwrap(parser.SectionStigma, parser.ParseStigma(ctx, page, opts), &degraded)
	devanion := unwrap(parser.SectionDevanion, parser.ParseDevanion(ctx, page, opts), &degraded)
	arcana := unwrap(parser.SectionArcana, parser.ParseArcana(ctx, page, opts), &degraded)

	record := domain.NewCharacterRecord(
		firstNonEmpty(profile.Server, id.Server),
		firstNonEmpty(profile.Name, id.Name),
		a.now(),
	)
	record.ClassName = ResolveClass(profile.ClassName, id.ClassHint)
	if profile.Level >= 1 {
		record.Level = profile.Level
	}
	record.Power = profile.Power
	record.Race = profile.Race
	record.Legion = profile.Legion
	record.CharacterImageURL = profile.ImageURL

	record.Stats = stats
	record.Equipment = equipment
	record.PetWings = petWings
	record.Titles = titles
	record.Ranking = ranking
	record.Skills = skills
	record.Stigma = stigma
	record.Devanion = devanion
	record.Arcana = arcana
	record.Normalize()

	a.logger.Info("Character parsed",
		zap.String("name", record.Name),
		zap.Int("level", record.Level),
		zap.String("class", record.ClassName),
		zap.Strings("degraded_sections", degraded),
	)
	return record, nil
}

// unwrap takes a section's value regardless of outcome and notes degradation.
func unwrap[T any](section string, res parser.Result[T], degraded *[]string) T {
	if res.Degraded() {
		*degraded = append(*degraded, section)
		metrics.SectionDegraded.WithLabelValues(section).Inc()
	}
	return res.Value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
