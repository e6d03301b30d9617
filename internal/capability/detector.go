package capability

import (
	"strings"

	"github.com/1homsi/guardrail/internal/model"
)

// Detector classifies call-graph edges against a PatternSet.
type Detector struct {
	patterns *PatternSet
}

// NewDetector returns a Detector over patterns.
func NewDetector(patterns *PatternSet) *Detector {
	return &Detector{patterns: patterns}
}

// Classify inspects one call-graph edge and returns the capability it
// triggers along with matching evidence, if any pattern's method name
// matches the edge's callee method.
func (d *Detector) Classify(edge model.MethodCall) (Capability, Evidence, bool) {
	for _, p := range d.patterns.Patterns {
		cap, ok := nameToCapability[p.CapabilityName]
		if !ok {
			continue
		}
		for _, mn := range p.MethodNames {
			if mn == edge.CalleeMethod {
				return cap, Evidence{
					Class: edge.CalleeClass, Method: edge.CalleeMethod,
					Line: edge.Line, Pattern: p.CapabilityName,
				}, true
			}
		}
	}
	return CapNone, Evidence{}, false
}

// ClassifyEdges folds every edge in edges into one CapabilitySet.
func (d *Detector) ClassifyEdges(edges []model.MethodCall) *CapabilitySet {
	set := NewSet()
	for _, e := range edges {
		if cap, ev, ok := d.Classify(e); ok {
			set.AddWithEvidence(cap, ev)
		}
	}
	return set
}

// ClassifyImport matches a `use` declaration's fully-qualified path against
// every pattern's import prefixes, mirroring the source ecosystem's own
// `use`-statement detection (vendor/package prefix matching) rather than a
// method-name call site.
func (d *Detector) ClassifyImport(path string) (Capability, Evidence, bool) {
	for _, p := range d.patterns.Patterns {
		cap, ok := nameToCapability[p.CapabilityName]
		if !ok {
			continue
		}
		for _, prefix := range p.ImportPrefixes {
			if prefix != "" && strings.HasPrefix(path, prefix) {
				return cap, Evidence{Class: path, Method: "use", Pattern: p.CapabilityName}, true
			}
		}
	}
	return CapNone, Evidence{}, false
}

// ClassifyImports folds every use-declaration path in paths into one
// CapabilitySet.
func (d *Detector) ClassifyImports(paths []string) *CapabilitySet {
	set := NewSet()
	for _, p := range paths {
		if cap, ev, ok := d.ClassifyImport(p); ok {
			set.AddWithEvidence(cap, ev)
		}
	}
	return set
}
