package constants

import "time"

// Selectors for the character detail page. Comma groups match in document order.
var ProfileSelectors = struct {
	Name       string
	ClassLevel string
	Desc       string
	Power      string
	Avatar     string
}{
	Name:       ".profile__info-name",
	ClassLevel: ".profile__class-level",
	Desc:       ".profile__info-desc",
	Power:      ".profile__info-item-level",
	Avatar:     ".profile__avatar img",
}

var SectionSelectors = struct {
	StatMore       string
	StatBase       string
	StatDetail     string
	EquipmentItem  string
	EquipmentName  string
	EquipmentLevel string
	EquipmentSlot  string
	EquipmentTab   string
	PetWingsItem   string
	TitleSection   string
	TitleCount     string
	TitleItem      string
	RankingItem    string
	RankingName    string
	RankingRank    string
	RankingPoint   string
	SkillItem      string
	SkillIcon      string
	SkillLevel     string
	SkillName      string
	StigmaItem     string
	DevanionItem   string
	ArcanaItem     string
}{
	StatMore:       ".stat__btn-more", // 더보기
	StatBase:       ".stat__base-item",
	StatDetail:     ".stat__detail-item, .stat-lords__item",
	EquipmentItem:  ".equipment__item",
	EquipmentName:  ".equipment__item-name, .item-name",
	EquipmentLevel: ".equipment__item-enhance, .enhance",
	EquipmentSlot:  ".equipment__item-slot, .slot",
	EquipmentTab:   ".equipment__tab-item",
	PetWingsItem:   ".pet__item, .wings__item, .equipment__item",
	TitleSection:   ".title.info__section, [class*='title']",
	TitleCount:     ".info__section-count, .title-count",
	TitleItem:      ".title__item, .title-item",
	RankingItem:    ".ranking__item",
	RankingName:    ".ranking__item-name",
	RankingRank:    ".ranking__item-rank",
	RankingPoint:   ".ranking__item-point",
	SkillItem:      ".skill__item, .skill-item",
	SkillIcon:      "img",
	SkillLevel:     ".skill__level, .level",
	SkillName:      ".skill__name, .skill-name",
	StigmaItem:     ".stigma__item, .stigma-item",
	DevanionItem:   ".deva__item, .devanion-item",
	ArcanaItem:     ".arcana__item, .arcana-item",
}

// PetWingsTabLabels are matched against tab text before reading pet/wings items.
var PetWingsTabLabels = []string{"펫", "날개"}

var SearchSelectors = struct {
	ResultRow  string
	ResultLink string
}{
	ResultRow:  ".character-list__item",
	ResultLink: "a",
}

var RankingTableSelectors = struct {
	Row          string
	Cell         string
	Name         string
	FilterToggle string
	RaceOption   string
	ServerOption string
}{
	Row:          ".ranking-table__body-items",
	Cell:         ".ranking-table__body-item",
	Name:         ".ranking-table__name-character",
	FilterToggle: ".dropdown-menu__trigger",
	RaceOption:   ".dropdown-menu__item--first",
	ServerOption: ".dropdown-menu__item--second",
}

// RankingClassColumn is the zero-based cell index holding the class label.
// Cells are rank, name, class, points.
const RankingClassColumn = 2

var ItemLimits = struct {
	PetWings int
	Titles   int
	Skills   int
}{
	PetWings: 10,
	Titles:   20,
	Skills:   50,
}

var CacheTTL = struct {
	CharacterRecord time.Duration
}{
	CharacterRecord: 5 * time.Minute, // 5분 - 캐릭터 상세
}

var CacheKeys = struct {
	CharacterPrefix string
}{
	CharacterPrefix: "aion2:character",
}

var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}{
	FailureThreshold: 3,                // 3회 연속 실패 시 Circuit OPEN
	ResetTimeout:     60 * time.Second, // 재시도 대기 시간
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var BatchConfig = struct {
	DefaultLimit int
	MaxLimit     int
}{
	DefaultLimit: 10,
	MaxLimit:     100,
}

var HTTPConfig = struct {
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	WriteWait         time.Duration
}{
	ReadHeaderTimeout: 10 * time.Second,
	ShutdownTimeout:   15 * time.Second,
	WriteWait:         10 * time.Second, // websocket 쓰기 제한
}
