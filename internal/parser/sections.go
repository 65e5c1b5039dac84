package parser

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/aion2-character-go/internal/constants"
	"github.com/kapu/aion2-character-go/internal/dom"
	"github.com/kapu/aion2-character-go/internal/domain"
)

// Profile holds the identity fields found on the page. Zero values mean the
// field was not found.
type Profile struct {
	Name      string
	ClassName string
	Level     int
	Power     int
	Server    string
	Race      string
	Legion    string
	ImageURL  string
}

func ParseProfile(ctx context.Context, page dom.Page, opts Options) Result[Profile] {
	sel := constants.ProfileSelectors
	var p Profile

	return extract(opts, SectionProfile, &p, func() error {
		name, _, err := dom.FirstText(ctx, page, sel.Name)
		if err != nil {
			return err
		}
		p.Name = name

		levelText, ok, err := dom.FirstText(ctx, page, sel.ClassLevel)
		if err != nil {
			return err
		}
		if ok {
			if level, class, found := SplitLevelClass(levelText); found {
				if level >= 1 {
					p.Level = level
				}
				p.ClassName = class
			}
		}

		desc, _, err := dom.FirstText(ctx, page, sel.Desc)
		if err != nil {
			return err
		}
		p.Server, p.Race, p.Legion = SplitDescription(desc)

		powerText, ok, err := dom.FirstText(ctx, page, sel.Power)
		if err != nil {
			return err
		}
		if ok {
			if power, found := FirstDigitRun(powerText); found {
				p.Power = power
			}
		}

		src, _, err := dom.FirstAttr(ctx, page, sel.Avatar, "src")
		if err != nil {
			return err
		}
		p.ImageURL = strings.TrimSpace(src)
		return nil
	})
}

// ParseStats activates the "show more" control when present, then reads the
// base and detailed stat lists. Line 0 of an item is the name, line 1 the value.
func ParseStats(ctx context.Context, page dom.Page, opts Options) Result[domain.Stats] {
	sel := constants.SectionSelectors
	stats := domain.NewStats()

	return extract(opts, SectionStats, &stats, func() error {
		if err := expandStats(ctx, page, opts); err != nil {
			opts.logger().Warn("Stats expand failed", zap.Error(err))
		}

		err := eachItem(ctx, page, sel.StatBase, 0, func(item dom.Selection) error {
			lines, err := itemLines(ctx, item)
			if err != nil {
				return err
			}
			if len(lines) < 2 || lines[0] == "" {
				return nil
			}
			if v, ok := ParseDigits(lines[1]); ok {
				stats.Base[lines[0]] = v
			}
			return nil
		})
		if err != nil {
			return err
		}

		return eachItem(ctx, page, sel.StatDetail, 0, func(item dom.Selection) error {
			lines, err := itemLines(ctx, item)
			if err != nil {
				return err
			}
			if len(lines) < 2 || lines[0] == "" {
				return nil
			}
			if v, ok := ParseSigned(lines[1]); ok {
				stats.Detailed[lines[0]] = v
			}
			return nil
		})
	})
}

func expandStats(ctx context.Context, page dom.Page, opts Options) error {
	more, ok, err := dom.First(ctx, page, constants.SectionSelectors.StatMore)
	if err != nil || !ok {
		return err
	}
	if err := more.Click(ctx); err != nil {
		return err
	}
	return page.Wait(ctx, opts.ActionSettle)
}

func ParseEquipment(ctx context.Context, page dom.Page, opts Options) Result[[]domain.EquipmentSlot] {
	sel := constants.SectionSelectors
	equipment := []domain.EquipmentSlot{}

	return extract(opts, SectionEquipment, &equipment, func() error {
		return eachItem(ctx, page, sel.EquipmentItem, 0, func(item dom.Selection) error {
			var slot domain.EquipmentSlot

			name, _, err := dom.FirstText(ctx, item, sel.EquipmentName)
			if err != nil {
				return err
			}
			slot.Name = name

			enhance, ok, err := dom.FirstText(ctx, item, sel.EquipmentLevel)
			if err != nil {
				return err
			}
			if ok {
				if level, found := EnhancementLevel(enhance); found {
					slot.Enhancement = intPtr(level)
				}
			}

			label, _, err := dom.FirstText(ctx, item, sel.EquipmentSlot)
			if err != nil {
				return err
			}
			slot.Slot = label

			if slot != (domain.EquipmentSlot{}) {
				equipment = append(equipment, slot)
			}
			return nil
		})
	})
}

// ParsePetWings switches to the pet or wings tab when one exists, then reads
// item names.
func ParsePetWings(ctx context.Context, page dom.Page, opts Options) Result[[]domain.NamedEntry] {
	sel := constants.SectionSelectors
	entries := []domain.NamedEntry{}

	return extract(opts, SectionPetWings, &entries, func() error {
		tabs, err := page.Find(ctx, sel.EquipmentTab)
		if err != nil {
			return err
		}
		tabs, err = tabs.HasText(ctx, constants.PetWingsTabLabels...)
		if err != nil {
			return err
		}
		if tabs.Len() > 0 {
			if err := tabs.At(0).Click(ctx); err != nil {
				return err
			}
			if err := page.Wait(ctx, opts.ActionSettle); err != nil {
				return err
			}
		}

		return eachItem(ctx, page, sel.PetWingsItem, constants.ItemLimits.PetWings, namedItem(ctx, &entries))
	})
}

// ParseTitles reads the first title section: an optional raw count entry
// followed by the titles themselves.
func ParseTitles(ctx context.Context, page dom.Page, opts Options) Result[[]domain.TitleEntry] {
	sel := constants.SectionSelectors
	titles := []domain.TitleEntry{}

	return extract(opts, SectionTitles, &titles, func() error {
		section, ok, err := dom.First(ctx, page, sel.TitleSection)
		if err != nil || !ok {
			return err
		}

		count, ok, err := dom.FirstText(ctx, section, sel.TitleCount)
		if err != nil {
			return err
		}
		if ok {
			titles = append(titles, domain.TitleEntry{Count: &count})
		}

		return eachItem(ctx, section, sel.TitleItem, constants.ItemLimits.Titles, func(item dom.Selection) error {
			text, err := item.Text(ctx)
			if err != nil {
				return err
			}
			if text = strings.TrimSpace(text); text != "" {
				titles = append(titles, domain.TitleEntry{Name: text})
			}
			return nil
		})
	})
}

func ParseRanking(ctx context.Context, page dom.Page, opts Options) Result[[]domain.RankingEntry] {
	sel := constants.SectionSelectors
	ranking := []domain.RankingEntry{}

	return extract(opts, SectionRanking, &ranking, func() error {
		return eachItem(ctx, page, sel.RankingItem, 0, func(item dom.Selection) error {
			var entry domain.RankingEntry

			kind, _, err := dom.FirstText(ctx, item, sel.RankingName)
			if err != nil {
				return err
			}
			entry.Type = kind

			rankText, ok, err := dom.FirstText(ctx, item, sel.RankingRank)
			if err != nil {
				return err
			}
			if ok {
				if rank, found := FirstDigitRun(rankText); found {
					entry.Rank = intPtr(rank)
				}
			}

			pointText, ok, err := dom.FirstText(ctx, item, sel.RankingPoint)
			if err != nil {
				return err
			}
			if ok {
				if points, found := ParseDigits(pointText); found {
					entry.Points = intPtr(points)
				}
			}

			if entry != (domain.RankingEntry{}) {
				ranking = append(ranking, entry)
			}
			return nil
		})
	})
}

func ParseSkills(ctx context.Context, page dom.Page, opts Options) Result[[]domain.SkillEntry] {
	sel := constants.SectionSelectors
	skills := []domain.SkillEntry{}

	return extract(opts, SectionSkills, &skills, func() error {
		return eachItem(ctx, page, sel.SkillItem, constants.ItemLimits.Skills, func(item dom.Selection) error {
			var skill domain.SkillEntry

			icon, ok, err := dom.First(ctx, item, sel.SkillIcon)
			if err != nil {
				return err
			}
			if ok {
				src, _, err := icon.Attr(ctx, "src")
				if err != nil {
					return err
				}
				alt, _, err := icon.Attr(ctx, "alt")
				if err != nil {
					return err
				}
				skill.Icon = strings.TrimSpace(src)
				skill.Name = strings.TrimSpace(alt)
			}

			name, _, err := dom.FirstText(ctx, item, sel.SkillName)
			if err != nil {
				return err
			}
			if name != "" {
				skill.Name = name
			}

			levelText, ok, err := dom.FirstText(ctx, item, sel.SkillLevel)
			if err != nil {
				return err
			}
			if ok {
				if level, found := FirstDigitRun(levelText); found {
					skill.Level = intPtr(level)
				}
			}

			if skill != (domain.SkillEntry{}) {
				skills = append(skills, skill)
			}
			return nil
		})
	})
}

func ParseStigma(ctx context.Context, page dom.Page, opts Options) Result[[]domain.NamedEntry] {
	entries := []domain.NamedEntry{}
	return extract(opts, SectionStigma, &entries, func() error {
		return eachItem(ctx, page, constants.SectionSelectors.StigmaItem, 0, namedItem(ctx, &entries))
	})
}

func ParseArcana(ctx context.Context, page dom.Page, opts Options) Result[[]domain.NamedEntry] {
	entries := []domain.NamedEntry{}
	return extract(opts, SectionArcana, &entries, func() error {
		return eachItem(ctx, page, constants.SectionSelectors.ArcanaItem, 0, namedItem(ctx, &entries))
	})
}

// ParseDevanion maps each entity name (line 0) to its value (line 1).
func ParseDevanion(ctx context.Context, page dom.Page, opts Options) Result[map[string]string] {
	devanion := map[string]string{}
	return extract(opts, SectionDevanion, &devanion, func() error {
		return eachItem(ctx, page, constants.SectionSelectors.DevanionItem, 0, func(item dom.Selection) error {
			lines, err := itemLines(ctx, item)
			if err != nil {
				return err
			}
			if len(lines) >= 2 && lines[0] != "" {
				devanion[lines[0]] = lines[1]
			}
			return nil
		})
	})
}

// namedItem appends the first line of each non-empty item.
func namedItem(ctx context.Context, entries *[]domain.NamedEntry) func(dom.Selection) error {
	return func(item dom.Selection) error {
		text, err := item.Text(ctx)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return nil
		}
		*entries = append(*entries, domain.NamedEntry{Name: FirstLine(text)})
		return nil
	}
}
