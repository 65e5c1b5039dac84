package parser

import "testing"

func TestParseDigits(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"12,345", 12345, true},
		{" 88 ", 88, true},
		{"0", 0, true},
		{"12%", 0, false},
		{"-15", 0, false},
		{"1.5", 0, false},
		{"", 0, false},
		{"１２", 0, false},
		{"99999999999999999999999", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseDigits(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseDigits(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseSigned(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"-15", -15, true},
		{"-1,200", -1200, true},
		{"+7", 7, true},
		{"42", 42, true},
		{"1-2", 0, false},
		{"--3", 0, false},
		{"- 3", 0, false},
		{"-", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseSigned(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSigned(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFirstDigitRun(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"전투력 12,345", 12345, true},
		{"12위", 12, true},
		{"Lv.5", 5, true},
		{"-", 0, false},
	}
	for _, tt := range tests {
		got, ok := FirstDigitRun(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FirstDigitRun(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEnhancementLevel(t *testing.T) {
	if n, ok := EnhancementLevel("강화 +15"); !ok || n != 15 {
		t.Fatalf("got %d %v", n, ok)
	}
	if n, ok := EnhancementLevel("+0"); !ok || n != 0 {
		t.Fatalf("got %d %v", n, ok)
	}
	if _, ok := EnhancementLevel("15"); ok {
		t.Fatalf("expected no match without +")
	}
}

func TestSplitLevelClass(t *testing.T) {
	tests := []struct {
		in    string
		level int
		class string
		ok    bool
	}{
		{"Lv.45 Templar", 45, "Templar", true},
		{"lv45 Cleric", 45, "Cleric", true},
		{"LV. 50 수호성", 50, "수호성", true},
		{"Lv.45", 45, "", true},
		{"Lv.45\nGladiator", 45, "Gladiator", true},
		{"45", 45, "", true},
		{"Templar", 0, "", false},
		{"", 0, "", false},
	}
	for _, tt := range tests {
		level, class, ok := SplitLevelClass(tt.in)
		if level != tt.level || class != tt.class || ok != tt.ok {
			t.Errorf("SplitLevelClass(%q) = %d, %q, %v; want %d, %q, %v",
				tt.in, level, class, ok, tt.level, tt.class, tt.ok)
		}
	}
}

func TestSplitDescription(t *testing.T) {
	server, race, legion := SplitDescription("  Siel  천족 Dawn   Wardens ")
	if server != "Siel" || race != "천족" || legion != "Dawn Wardens" {
		t.Fatalf("got %q %q %q", server, race, legion)
	}

	server, race, legion = SplitDescription("Siel")
	if server != "Siel" || race != "" || legion != "" {
		t.Fatalf("got %q %q %q", server, race, legion)
	}
}
