package domain

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultServerIDs is the built-in server name to site identifier table.
// Both romanized and Korean names are accepted.
func DefaultServerIDs() map[string]string {
	return map[string]string{
		"Israphel": "2002",
		"Siel":     "2001",
		"이스라펠":     "2002",
		"시엘":       "2001",
	}
}

// ServerTable resolves server names to site identifiers. Matching is exact and
// case-sensitive. It is immutable once built.
type ServerTable struct {
	ids      map[string]string
	fallback string
}

func NewServerTable(ids map[string]string, defaultServer string) (*ServerTable, error) {
	fallback, ok := ids[defaultServer]
	if !ok {
		return nil, fmt.Errorf("default server %q is not in the server table", defaultServer)
	}

	copied := make(map[string]string, len(ids))
	for name, id := range ids {
		copied[name] = id
	}

	return &ServerTable{ids: copied, fallback: fallback}, nil
}

func (t *ServerTable) Lookup(name string) (string, bool) {
	id, ok := t.ids[name]
	return id, ok
}

// Resolve returns the identifier for name, or the default server's identifier.
func (t *ServerTable) Resolve(name string) string {
	if id, ok := t.ids[name]; ok {
		return id
	}
	return t.fallback
}

func (t *ServerTable) Names() []string {
	names := make([]string, 0, len(t.ids))
	for name := range t.ids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const (
	RaceElyos    = "Elyos"
	RaceAsmodian = "Asmodian"
)

// NormalizeRace maps the site's race labels to a canonical name. Unrecognized
// text is returned trimmed.
func NormalizeRace(raw string) string {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToLower(trimmed) {
	case "천족", "elyos":
		return RaceElyos
	case "마족", "asmodian":
		return RaceAsmodian
	}
	return trimmed
}
