// Package prompts holds the system prompts and analysis framework hints used
// by the responder, loaded from embedded markdown files.
package prompts

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed files
var promptsFS embed.FS

// Framework names accepted by Framework.
const (
	FrameworkDescriptive = "descriptive"
	FrameworkDiagnostic  = "diagnostic"
	FrameworkPredictive  = "predictive"
	FrameworkSWOT        = "swot"
	FrameworkFunnel      = "funnel"
	FrameworkLogicTree   = "logic_tree"
)

// Prompts contains all the responder prompts loaded from embedded files.
type Prompts struct {
	SQLGen     string // SQL generation system prompt with the df_data schema
	Analyze    string // Analyst system prompt for result interpretation
	Guidance   string // Default analysis guidance appended to Analyze
	Caveats    string // Data quality caveats appended to Analyze
	Plan       string // Planner template ({{QUESTION}}, {{DATA_SUMMARY}})
	Synthesize string // Report template ({{QUESTION}}, {{EVIDENCE}}, {{COLUMNS}})

	frameworks map[string]string
}

// Load loads all prompts from the embedded filesystem.
func Load() (*Prompts, error) {
	p := &Prompts{}

	var err error
	if p.SQLGen, err = loadPrompt("SQLGEN.md"); err != nil {
		return nil, fmt.Errorf("failed to load SQLGEN: %w", err)
	}
	if p.Analyze, err = loadPrompt("ANALYZE.md"); err != nil {
		return nil, fmt.Errorf("failed to load ANALYZE: %w", err)
	}
	if p.Guidance, err = loadPrompt("GUIDANCE.md"); err != nil {
		return nil, fmt.Errorf("failed to load GUIDANCE: %w", err)
	}
	if p.Caveats, err = loadPrompt("CAVEATS.md"); err != nil {
		return nil, fmt.Errorf("failed to load CAVEATS: %w", err)
	}
	if p.Plan, err = loadPrompt("PLAN.md"); err != nil {
		return nil, fmt.Errorf("failed to load PLAN: %w", err)
	}
	if p.Synthesize, err = loadPrompt("SYNTHESIZE.md"); err != nil {
		return nil, fmt.Errorf("failed to load SYNTHESIZE: %w", err)
	}

	p.frameworks = make(map[string]string)
	for name, file := range map[string]string{
		FrameworkDescriptive: "DESCRIPTIVE.md",
		FrameworkDiagnostic:  "DIAGNOSTIC.md",
		FrameworkPredictive:  "PREDICTIVE.md",
		FrameworkSWOT:        "SWOT.md",
		FrameworkFunnel:      "FUNNEL.md",
		FrameworkLogicTree:   "LOGICTREE.md",
	} {
		hint, err := loadPrompt("frameworks/" + file)
		if err != nil {
			return nil, fmt.Errorf("failed to load framework %s: %w", name, err)
		}
		p.frameworks[name] = hint
	}

	return p, nil
}

// Framework returns the analysis framework hint for the given name, or the
// empty string when the name is unknown or empty.
func (p *Prompts) Framework(name string) string {
	return p.frameworks[strings.ToLower(strings.TrimSpace(name))]
}

// FrameworkNames returns the known framework names in stable order.
func (p *Prompts) FrameworkNames() []string {
	return []string{
		FrameworkDescriptive,
		FrameworkDiagnostic,
		FrameworkPredictive,
		FrameworkSWOT,
		FrameworkFunnel,
		FrameworkLogicTree,
	}
}

func loadPrompt(path string) (string, error) {
	data, err := promptsFS.ReadFile("files/" + path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
