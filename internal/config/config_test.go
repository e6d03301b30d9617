package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "guardrail.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindPrefersYAML(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"guardrail.php", "guardrail.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("version: \"1\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got := Find(dir)
	if filepath.Base(got) != "guardrail.yaml" {
		t.Fatalf("expected guardrail.yaml to win, got %s", got)
	}
}

func TestFindNoneExist(t *testing.T) {
	dir := t.TempDir()
	if got := Find(dir); got != "" {
		t.Fatalf("expected empty string when no config exists, got %q", got)
	}
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
version: "1.0"
rules:
  - name: auth-required
    entry_source: "App\\Controller\\*"
    required_calls:
      - class: Auth
        method: check
`)
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Rules) != 1 || f.Rules[0].Name != "auth-required" {
		t.Fatalf("unexpected rules: %+v", f.Rules)
	}
	rules := f.ToRules()
	if len(rules) != 1 || len(rules[0].RequiredCalls) != 1 {
		t.Fatalf("unexpected converted rules: %+v", rules)
	}
}

func TestLoadInvalidVersion(t *testing.T) {
	path := writeConfig(t, `
version: "not-a-version"
rules:
  - name: x
    required_calls:
      - class: A
        method: b
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an invalid semver version")
	}
}

func TestLoadRuleWithNeitherRequiredNorObligations(t *testing.T) {
	path := writeConfig(t, `
rules:
  - name: empty-rule
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a rule with neither required calls nor obligations")
	}
}

func TestLoadObligationWithNoCompletions(t *testing.T) {
	path := writeConfig(t, `
rules:
  - name: txn
    obligations:
      - trigger:
          class: DB
          method: beginTransaction
        completions: []
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an obligation with no completions")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestToRulesConvertsObligations(t *testing.T) {
	path := writeConfig(t, `
rules:
  - name: txn
    obligations:
      - trigger:
          class: DB
          method: beginTransaction
        completions:
          - class: DB
            method: commit
          - class: DB
            method: rollback
        message: unmatched transaction
`)
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	rules := f.ToRules()
	if len(rules) != 1 || len(rules[0].Obligations) != 1 {
		t.Fatalf("unexpected rules: %+v", rules)
	}
	ob := rules[0].Obligations[0]
	if ob.Trigger.Class != "DB" || ob.Trigger.Method != "beginTransaction" {
		t.Fatalf("unexpected trigger: %+v", ob.Trigger)
	}
	if len(ob.Completions) != 2 {
		t.Fatalf("expected 2 completions, got %d", len(ob.Completions))
	}
}
