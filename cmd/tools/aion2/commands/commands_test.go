package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/kapu/aion2-character-go/internal/domain"
)

func TestParseCommandPrintsRecord(t *testing.T) {
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"parse", "../../../../internal/parser/testdata/character.html", "--class", "Gladiator"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("parse: %v (stderr: %s)", err, errOut.String())
	}

	var record domain.CharacterRecord
	if err := json.Unmarshal(out.Bytes(), &record); err != nil {
		t.Fatalf("stdout is not a record: %v\n%s", err, out.String())
	}
	if record.Name != "Able" || record.ClassName != "Templar" || record.Level != 45 {
		t.Fatalf("unexpected record %+v", record)
	}
	if len(record.Equipment) != 2 {
		t.Fatalf("unexpected equipment %+v", record.Equipment)
	}
}

func TestParseCommandMissingFile(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"parse", "does-not-exist.html"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.ExecuteContext(context.Background()); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestCommandsRequireArguments(t *testing.T) {
	for _, args := range [][]string{{"character", "Siel"}, {"abyss"}, {"url"}} {
		rootCmd.SetArgs(args)
		if err := rootCmd.ExecuteContext(context.Background()); err == nil {
			t.Errorf("%v should fail argument validation", args)
		}
	}
	rootCmd.SetArgs(nil)
}
