// Package config loads rule and entry-point discovery configuration from a
// YAML document. The spec's CLI surface names the lookup files
// `guardrail.config.php` then `guardrail.php`, preserving this engine's
// source ecosystem's naming convention; this package also accepts a plain
// `guardrail.yaml` and, in all three cases, parses the file's *content* as
// YAML regardless of its extension — there is no reason to invent a second
// config syntax just because the filename looks like source.
//
// Grounded in the teacher's reliance on gopkg.in/yaml.v3 for its own rule
// and pattern-set files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/1homsi/guardrail/internal/model"
)

// LookupNames is the default config-file search order within a working
// directory, highest priority first.
var LookupNames = []string{"guardrail.yaml", "guardrail.config.php", "guardrail.php"}

// MethodRefSpec is a YAML-facing (class, method) reference.
type MethodRefSpec struct {
	Class  string `yaml:"class"`
	Method string `yaml:"method"`
}

func (m MethodRefSpec) toModel() model.MethodRef {
	return model.MethodRef{Class: m.Class, Method: m.Method}
}

// ObligationSpec is a YAML-facing paired-call obligation.
type ObligationSpec struct {
	Trigger     MethodRefSpec   `yaml:"trigger"`
	Completions []MethodRefSpec `yaml:"completions"`
	Message     string          `yaml:"message"`
}

// RuleSpec is a YAML-facing rule declaration.
type RuleSpec struct {
	Name          string           `yaml:"name"`
	EntrySource   string           `yaml:"entry_source"`
	RequiredCalls []MethodRefSpec  `yaml:"required_calls"`
	PathCondition string           `yaml:"path_condition"`
	Obligations   []ObligationSpec `yaml:"obligations"`
	Message       string           `yaml:"message"`
}

// File is the top-level shape of a guardrail config document.
type File struct {
	Version  string     `yaml:"version"`
	Paths    []string   `yaml:"paths"`
	Excludes []string   `yaml:"excludes"`
	Rules    []RuleSpec `yaml:"rules"`
}

// Find locates the first existing config file in dir per LookupNames,
// returning "" if none exist (not an error: a run may supply rules some
// other way, or have none).
func Find(dir string) string {
	for _, name := range LookupNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load reads and parses the config file at path, validating its version
// field (if set) as semver and every rule per §7 category 1: a rule with
// neither required calls nor obligations, or an obligation with no
// completions, is a configuration error and fails the load.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if f.Version != "" && !semver.IsValid("v"+f.Version) {
		return nil, fmt.Errorf("config %s: invalid version %q", path, f.Version)
	}
	if err := validate(f.Rules); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &f, nil
}

func validate(rules []RuleSpec) error {
	for _, r := range rules {
		if len(r.RequiredCalls) == 0 && len(r.Obligations) == 0 {
			return fmt.Errorf("rule %q: has neither required calls nor obligations", r.Name)
		}
		for _, ob := range r.Obligations {
			if len(ob.Completions) == 0 {
				return fmt.Errorf("rule %q: obligation on %s::%s has no completions",
					r.Name, ob.Trigger.Class, ob.Trigger.Method)
			}
		}
	}
	return nil
}

// ToRules converts the file's rule specs into the model.Rule shape the
// evaluator consumes.
func (f *File) ToRules() []model.Rule {
	out := make([]model.Rule, 0, len(f.Rules))
	for _, r := range f.Rules {
		rule := model.Rule{
			Name:          r.Name,
			EntrySource:   r.EntrySource,
			PathCondition: r.PathCondition,
			Message:       r.Message,
		}
		for _, rc := range r.RequiredCalls {
			rule.RequiredCalls = append(rule.RequiredCalls, rc.toModel())
		}
		for _, ob := range r.Obligations {
			obligation := model.PairedCallObligation{Trigger: ob.Trigger.toModel(), Message: ob.Message}
			for _, c := range ob.Completions {
				obligation.Completions = append(obligation.Completions, c.toModel())
			}
			rule.Obligations = append(rule.Obligations, obligation)
		}
		out = append(out, rule)
	}
	return out
}
