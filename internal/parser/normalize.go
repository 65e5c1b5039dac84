package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kapu/aion2-character-go/internal/dom"
)

var (
	digitRunPattern    = regexp.MustCompile(`\d+`)
	enhancementPattern = regexp.MustCompile(`\+(\d+)`)
	levelClassPattern  = regexp.MustCompile(`(?i)lv\.?\s*(\d+)\s*(.*)`)
)

// StripSeparators trims s and removes thousands separators.
func StripSeparators(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseDigits accepts text that is purely digits once separators are removed.
func ParseDigits(s string) (int, bool) {
	s = StripSeparators(s)
	if !isDigits(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseSigned is ParseDigits with one optional leading sign.
func ParseSigned(s string) (int, bool) {
	s = StripSeparators(s)
	negative := false
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	if !isDigits(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	if negative {
		n = -n
	}
	return n, true
}

// FirstDigitRun returns the first run of digits in s after separators are removed.
func FirstDigitRun(s string) (int, bool) {
	match := digitRunPattern.FindString(StripSeparators(s))
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// EnhancementLevel reads the number following a "+" marker, e.g. "+15" or "강화 +7".
func EnhancementLevel(s string) (int, bool) {
	m := enhancementPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// SplitLevelClass reads "Lv.<digits> <class>" or a bare digit string. class is
// empty when the text carries no class. ok is false when no level was found.
func SplitLevelClass(s string) (level int, class string, ok bool) {
	s = strings.TrimSpace(s)
	if m := levelClassPattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, "", false
		}
		return n, strings.TrimSpace(m[2]), true
	}
	if isDigits(s) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, "", false
		}
		return n, "", true
	}
	return 0, "", false
}

// SplitDescription splits a profile description positionally into server,
// race and legion. The legion keeps every remaining token.
func SplitDescription(s string) (server, race, legion string) {
	parts := strings.Fields(s)
	if len(parts) >= 1 {
		server = parts[0]
	}
	if len(parts) >= 2 {
		race = parts[1]
	}
	if len(parts) >= 3 {
		legion = strings.Join(parts[2:], " ")
	}
	return server, race, legion
}

// FirstLine returns the first line of rendered text.
func FirstLine(text string) string {
	return dom.Lines(text)[0]
}

func intPtr(n int) *int {
	return &n
}
