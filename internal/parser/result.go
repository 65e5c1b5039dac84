package parser

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"github.com/kapu/aion2-character-go/internal/dom"
	"github.com/kapu/aion2-character-go/pkg/errors"
)

// Section names, also used as metric and log labels.
const (
	SectionProfile   = "profile"
	SectionStats     = "stats"
	SectionEquipment = "equipment"
	SectionPetWings  = "pet_wings"
	SectionTitles    = "titles"
	SectionRanking   = "ranking"
	SectionSkills    = "skills"
	SectionStigma    = "stigma"
	SectionDevanion  = "devanion"
	SectionArcana    = "arcana"
)

// Result is a section's output. Value always holds whatever was collected;
// Err is set when extraction stopped early, in which case Value is partial.
type Result[T any] struct {
	Value T
	Err   error
}

func (r Result[T]) Degraded() bool {
	return r.Err != nil
}

// Options carries what the stateful sections need.
type Options struct {
	// ActionSettle is waited after clicking an expand or tab control.
	ActionSettle time.Duration
	Logger       *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// extract runs fn and converts a returned error or a panic into a degraded
// result carrying the partial value.
func extract[T any](opts Options, section string, value *T, fn func() error) Result[T] {
	var (
		err     error
		catcher panics.Catcher
	)
	catcher.Try(func() {
		err = fn()
	})
	if recovered := catcher.Recovered(); recovered != nil {
		err = recovered.AsError()
	}

	if err != nil {
		opts.logger().Warn("Section parse degraded",
			zap.String("section", section),
			zap.Error(err),
		)
		return Result[T]{Value: *value, Err: errors.NewSectionError(section, err)}
	}
	return Result[T]{Value: *value}
}

// eachItem calls fn for up to limit elements matched by selector. limit <= 0
// means no cap. The first error stops the walk.
func eachItem(ctx context.Context, f dom.Finder, selector string, limit int, fn func(item dom.Selection) error) error {
	items, err := f.Find(ctx, selector)
	if err != nil {
		return err
	}

	n := items.Len()
	if limit > 0 && n > limit {
		n = limit
	}
	for i := 0; i < n; i++ {
		if err := fn(items.At(i)); err != nil {
			return err
		}
	}
	return nil
}

// itemLines returns the rendered lines of one item.
func itemLines(ctx context.Context, item dom.Selection) ([]string, error) {
	text, err := item.Text(ctx)
	if err != nil {
		return nil, err
	}
	return dom.Lines(text), nil
}
