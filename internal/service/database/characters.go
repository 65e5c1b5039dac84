package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/kapu/aion2-character-go/internal/domain"
	"github.com/kapu/aion2-character-go/internal/util"
	"github.com/kapu/aion2-character-go/pkg/errors"
)

const characterSchema = `
CREATE TABLE IF NOT EXISTS characters (
	id            BIGSERIAL PRIMARY KEY,
	server        TEXT        NOT NULL,
	name          TEXT        NOT NULL,
	class_name    TEXT        NOT NULL,
	level         INTEGER     NOT NULL,
	power         INTEGER     NOT NULL DEFAULT 0,
	race          TEXT        NOT NULL DEFAULT '',
	race_name     TEXT        NOT NULL DEFAULT '',
	legion        TEXT        NOT NULL DEFAULT '',
	image_url     TEXT        NOT NULL DEFAULT '',
	sections      JSONB       NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	UNIQUE (server, name)
)`

// sectionPayload is the JSONB column layout.
type sectionPayload struct {
	Stats     domain.Stats           `json:"stats"`
	Equipment []domain.EquipmentSlot `json:"equipment"`
	PetWings  []domain.NamedEntry    `json:"pet_wings"`
	Titles    []domain.TitleEntry    `json:"titles"`
	Ranking   []domain.RankingEntry  `json:"ranking"`
	Skills    []domain.SkillEntry    `json:"skills"`
	Stigma    []domain.NamedEntry    `json:"stigma"`
	Devanion  map[string]string      `json:"devanion"`
	Arcana    []domain.NamedEntry    `json:"arcana"`
}

func encodeSections(r *domain.CharacterRecord) ([]byte, error) {
	return json.Marshal(sectionPayload{
		Stats:     r.Stats,
		Equipment: r.Equipment,
		PetWings:  r.PetWings,
		Titles:    r.Titles,
		Ranking:   r.Ranking,
		Skills:    r.Skills,
		Stigma:    r.Stigma,
		Devanion:  r.Devanion,
		Arcana:    r.Arcana,
	})
}

func decodeSections(raw []byte, r *domain.CharacterRecord) error {
	var p sectionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	r.Stats = p.Stats
	r.Equipment = p.Equipment
	r.PetWings = p.PetWings
	r.Titles = p.Titles
	r.Ranking = p.Ranking
	r.Skills = p.Skills
	r.Stigma = p.Stigma
	r.Devanion = p.Devanion
	r.Arcana = p.Arcana
	return nil
}

// CharacterRepository persists the latest record per (server, name).
type CharacterRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewCharacterRepository(postgres *PostgresService, logger *zap.Logger) *CharacterRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CharacterRepository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

func (r *CharacterRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, characterSchema); err != nil {
		return errors.NewStorageError("failed to create characters table", "migrate", err)
	}
	return nil
}

// Upsert inserts the record or replaces the stored one for the same
// (server, name).
func (r *CharacterRepository) Upsert(ctx context.Context, record *domain.CharacterRecord) error {
	sections, err := encodeSections(record)
	if err != nil {
		return errors.NewStorageError("failed to encode sections", "upsert", err)
	}

	query := `
		INSERT INTO characters (server, name, class_name, level, power, race, race_name,
		                        legion, image_url, sections, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (server, name) DO UPDATE SET
			class_name = EXCLUDED.class_name,
			level      = EXCLUDED.level,
			power      = EXCLUDED.power,
			race       = EXCLUDED.race,
			race_name  = EXCLUDED.race_name,
			legion     = EXCLUDED.legion,
			image_url  = EXCLUDED.image_url,
			sections   = EXCLUDED.sections,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		record.Server, record.Name, record.ClassName, record.Level, record.Power,
		record.Race, domain.NormalizeRace(record.Race), record.Legion,
		record.CharacterImageURL, sections, record.UpdatedAt,
	)
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to upsert %s/%s", record.Server, record.Name), "upsert", err)
	}

	r.logger.Debug("Character stored",
		zap.String("server", record.Server),
		zap.String("name", record.Name),
	)
	return nil
}

// FindByName returns nil, nil when no record is stored.
func (r *CharacterRepository) FindByName(ctx context.Context, server, name string) (*domain.CharacterRecord, error) {
	query := `
		SELECT server, name, class_name, level, power, race, legion, image_url, sections, updated_at
		FROM characters
		WHERE server = $1 AND name = $2
		LIMIT 1
	`

	var (
		record   domain.CharacterRecord
		sections []byte
	)
	err := r.db.QueryRowContext(ctx, query, server, name).Scan(
		&record.Server, &record.Name, &record.ClassName, &record.Level, &record.Power,
		&record.Race, &record.Legion, &record.CharacterImageURL, &sections, &record.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStorageError("failed to query character", "find", err)
	}

	if err := decodeSections(sections, &record); err != nil {
		return nil, errors.NewStorageError("failed to decode sections", "find", err)
	}
	record.UpdatedAt = util.ToKST(record.UpdatedAt)
	record.Normalize()
	return &record, nil
}
