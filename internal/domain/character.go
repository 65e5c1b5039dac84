package domain

import (
	"strings"
	"time"
)

// Unknown is the placeholder used when a required identity field cannot be resolved.
const Unknown = "Unknown"

// CharacterRecord is the assembled result of one extraction call.
// Section payloads are never nil; absence of data is an empty container.
type CharacterRecord struct {
	Server            string    `json:"server"`
	Name              string    `json:"name"`
	ClassName         string    `json:"class_name"`
	Level             int       `json:"level"`
	Power             int       `json:"power"`
	Race              string    `json:"race"`
	Legion            string    `json:"legion"`
	CharacterImageURL string    `json:"character_image_url"`
	UpdatedAt         time.Time `json:"updated_at"`

	Stats     Stats             `json:"stats"`
	Equipment []EquipmentSlot   `json:"equipment"`
	PetWings  []NamedEntry      `json:"pet_wings"`
	Titles    []TitleEntry      `json:"titles"`
	Ranking   []RankingEntry    `json:"ranking"`
	Skills    []SkillEntry      `json:"skills"`
	Stigma    []NamedEntry      `json:"stigma"`
	Devanion  map[string]string `json:"devanion"`
	Arcana    []NamedEntry      `json:"arcana"`
}

type Stats struct {
	Base     map[string]int `json:"base"`
	Detailed map[string]int `json:"detailed"`
}

func NewStats() Stats {
	return Stats{
		Base:     map[string]int{},
		Detailed: map[string]int{},
	}
}

type EquipmentSlot struct {
	Name        string `json:"name,omitempty"`
	Enhancement *int   `json:"enhancement,omitempty"`
	Slot        string `json:"slot,omitempty"`
}

// TitleEntry is either the section's raw count (Count non-nil, possibly
// empty) or one title (Name set).
type TitleEntry struct {
	Name  string  `json:"name,omitempty"`
	Count *string `json:"count,omitempty"`
}

type RankingEntry struct {
	Type   string `json:"type,omitempty"`
	Rank   *int   `json:"rank,omitempty"`
	Points *int   `json:"points,omitempty"`
}

type SkillEntry struct {
	Name  string `json:"name,omitempty"`
	Icon  string `json:"icon,omitempty"`
	Level *int   `json:"level,omitempty"`
}

type NamedEntry struct {
	Name string `json:"name"`
}

// Identity is the caller-supplied identity of a lookup. ClassHint may be empty.
type Identity struct {
	Server    string
	Name      string
	ClassHint string
}

// RankingTarget is one leaderboard row queued for a detail fetch.
type RankingTarget struct {
	Name      string `json:"name"`
	ClassHint string `json:"class_hint"`
}

// NewCharacterRecord returns a record with sentinel identity defaults and empty sections.
func NewCharacterRecord(server, name string, updatedAt time.Time) *CharacterRecord {
	r := &CharacterRecord{
		Server:    server,
		Name:      name,
		ClassName: Unknown,
		Level:     1,
		UpdatedAt: updatedAt,
	}
	r.Normalize()
	return r
}

// FallbackRecord is the minimal record built from caller-supplied identity only.
func FallbackRecord(id Identity, updatedAt time.Time) *CharacterRecord {
	r := NewCharacterRecord(id.Server, id.Name, updatedAt)
	r.ClassName = OrUnknown(id.ClassHint)
	return r
}

// Normalize restores the record invariants: non-empty identity, level >= 1
// and non-nil section containers.
func (r *CharacterRecord) Normalize() {
	r.Server = OrUnknown(r.Server)
	r.Name = OrUnknown(r.Name)
	r.ClassName = OrUnknown(r.ClassName)
	if r.Level < 1 {
		r.Level = 1
	}
	if r.Power < 0 {
		r.Power = 0
	}
	if r.Stats.Base == nil {
		r.Stats.Base = map[string]int{}
	}
	if r.Stats.Detailed == nil {
		r.Stats.Detailed = map[string]int{}
	}
	if r.Equipment == nil {
		r.Equipment = []EquipmentSlot{}
	}
	if r.PetWings == nil {
		r.PetWings = []NamedEntry{}
	}
	if r.Titles == nil {
		r.Titles = []TitleEntry{}
	}
	if r.Ranking == nil {
		r.Ranking = []RankingEntry{}
	}
	if r.Skills == nil {
		r.Skills = []SkillEntry{}
	}
	if r.Stigma == nil {
		r.Stigma = []NamedEntry{}
	}
	if r.Devanion == nil {
		r.Devanion = map[string]string{}
	}
	if r.Arcana == nil {
		r.Arcana = []NamedEntry{}
	}
}

// OrUnknown returns s trimmed, or Unknown when nothing is left.
func OrUnknown(s string) string {
	if trimmed := strings.TrimSpace(s); trimmed != "" {
		return trimmed
	}
	return Unknown
}

// IsUnresolved reports whether a field value is missing or the sentinel.
func IsUnresolved(s string) bool {
	trimmed := strings.TrimSpace(s)
	return trimmed == "" || trimmed == Unknown
}
