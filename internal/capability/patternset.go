package capability

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/1homsi/guardrail/languages"
)

// Pattern is one hazard rule: a capability name plus the call-site method
// names and/or import path prefixes that trigger it.
type Pattern struct {
	CapabilityName string   `yaml:"capability"`
	MethodNames    []string `yaml:"method_names"`
	ImportPrefixes []string `yaml:"import_prefixes"`
}

// PatternSet is a named language's full collection of hazard patterns.
type PatternSet struct {
	Patterns []Pattern `yaml:"patterns"`
}

var nameToCapability = map[string]Capability{
	"exec":          CapExec,
	"db":            CapDB,
	"network":       CapNetwork,
	"filesystem":    CapFilesystem,
	"env":           CapEnv,
	"serialization": CapSerialization,
	"crypto":        CapCrypto,
	"auth":          CapAuth,
}

// LoadPatterns loads the embedded pattern set for the named language, e.g.
// "php" for languages/php.yaml.
func LoadPatterns(name string) (*PatternSet, error) {
	data, err := languages.FS.ReadFile(name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("capability: no pattern set for %q: %w", name, err)
	}
	var ps PatternSet
	if err := yaml.Unmarshal(data, &ps); err != nil {
		return nil, fmt.Errorf("capability: parse pattern set %q: %w", name, err)
	}
	return &ps, nil
}

// MustLoadPatterns is LoadPatterns, panicking on error — for call sites
// that load a pattern set the binary ships embedded, where failure means
// the build itself is broken.
func MustLoadPatterns(name string) *PatternSet {
	ps, err := LoadPatterns(name)
	if err != nil {
		panic(err)
	}
	return ps
}
