package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/1homsi/guardrail/internal/model"
)

type sarifOutput struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

// WriteSARIF renders the summary as a SARIF 2.1.0 log, one result per
// required-call miss or paired-call violation, suitable for CI annotation.
func WriteSARIF(w io.Writer, summary Summary) error {
	out := sarifOutput{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
	}
	run := sarifRun{Tool: sarifTool{Driver: sarifDriver{Name: "guardrail", InformationURI: "https://github.com/1homsi/guardrail"}}}

	seen := make(map[string]bool)
	for _, rule := range summary.Rules {
		if !seen[rule.Rule.Name] {
			seen[rule.Rule.Name] = true
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{
				ID: rule.Rule.Name, Name: rule.Rule.Name,
				ShortDescription: sarifMessage{Text: rule.Rule.Message},
			})
		}
		for _, res := range rule.Results {
			if res.Found {
				continue
			}
			run.Results = append(run.Results, sarifResult{
				RuleID: rule.Rule.Name, Level: "error",
				Message:   sarifMessage{Text: missMessage(res)},
				Locations: locationsFor(res.EntryPoint.File),
			})
		}
		for _, v := range rule.Violations {
			run.Results = append(run.Results, sarifResult{
				RuleID: rule.Rule.Name, Level: "error",
				Message:   sarifMessage{Text: pairMessage(v)},
				Locations: locationsFor(v.EntryPoint.File),
			})
		}
	}
	out.Runs = []sarifRun{run}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func missMessage(res model.AnalysisResult) string {
	if res.Message != "" {
		return res.Message
	}
	return fmt.Sprintf("%s does not reach %s", res.EntryPoint.ID(), res.Required.ID())
}

func pairMessage(v model.PairedCallViolation) string {
	if v.Obligation.Message != "" {
		return v.Obligation.Message
	}
	return fmt.Sprintf("%s reaches %s but no completion is reachable", v.EntryPoint.ID(), v.Obligation.Trigger.ID())
}

func locationsFor(file string) []sarifLocation {
	if file == "" {
		return nil
	}
	return []sarifLocation{{PhysicalLocation: sarifPhysicalLocation{ArtifactLocation: sarifArtifactLocation{URI: file}}}}
}
