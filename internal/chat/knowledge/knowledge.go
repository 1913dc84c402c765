// Package knowledge holds the static conversational data: the ordered
// intent rules, the company/product knowledge base, and the canned reply
// templates. Everything is embedded at build time and read-only after load.
package knowledge

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var knowledgeYAML []byte

//go:embed templates.yaml
var templatesYAML []byte

// Base is the company and product knowledge base.
type Base struct {
	Company struct {
		Name           string   `yaml:"name"`
		Description    string   `yaml:"description"`
		Services       []string `yaml:"services"`
		Benefits       []string `yaml:"benefits"`
		TargetAudience string   `yaml:"target_audience"`
	} `yaml:"company"`
	Annuities struct {
		Definition string `yaml:"definition"`
		Types      []struct {
			Name        string `yaml:"name"`
			Description string `yaml:"description"`
			BestFor     string `yaml:"best_for"`
		} `yaml:"types"`
		Benefits       []string `yaml:"benefits"`
		Considerations []string `yaml:"considerations"`
	} `yaml:"annuities"`
	RetirementPlanning struct {
		KeyConcerns []string `yaml:"key_concerns"`
		Strategies  []string `yaml:"strategies"`
	} `yaml:"retirement_planning"`
}

// Template is the canned reply for one intent.
type Template struct {
	Reply       string   `yaml:"reply"`
	Suggestions []string `yaml:"suggestions"`
}

var (
	base      = mustLoadBase()
	templates = mustLoadTemplates()
)

func mustLoadBase() Base {
	var b Base
	if err := yaml.Unmarshal(knowledgeYAML, &b); err != nil {
		panic(fmt.Sprintf("knowledge: invalid knowledge base: %v", err))
	}
	return b
}

func mustLoadTemplates() map[string]Template {
	var doc struct {
		Templates map[string]Template `yaml:"templates"`
	}
	if err := yaml.Unmarshal(templatesYAML, &doc); err != nil {
		panic(fmt.Sprintf("knowledge: invalid templates: %v", err))
	}
	if _, ok := doc.Templates[IntentNotFound]; !ok {
		panic("knowledge: templates missing not_found fallback")
	}
	return doc.Templates
}

// KnowledgeBase returns the loaded knowledge base.
func KnowledgeBase() Base {
	return base
}

// TemplateFor returns the canned reply for an intent, falling back to the
// not_found template for unknown intents.
func TemplateFor(intent string) Template {
	if tmpl, ok := templates[intent]; ok {
		return tmpl
	}
	return templates[IntentNotFound]
}

// ContextSummary renders the knowledge base as a compact text block for
// the AI generator's system prompt.
func ContextSummary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Company: %s. %s\n", base.Company.Name, base.Company.Description)
	fmt.Fprintf(&sb, "Services: %s\n", strings.Join(base.Company.Services, "; "))
	fmt.Fprintf(&sb, "Annuities: %s\n", base.Annuities.Definition)
	for _, t := range base.Annuities.Types {
		fmt.Fprintf(&sb, "- %s: %s (best for %s)\n", t.Name, t.Description, t.BestFor)
	}
	fmt.Fprintf(&sb, "Retirement planning concerns: %s\n", strings.Join(base.RetirementPlanning.KeyConcerns, "; "))
	return sb.String()
}
