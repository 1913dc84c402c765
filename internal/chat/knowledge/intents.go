package knowledge

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed intents.yaml
var intentsYAML []byte

// IntentNotFound is returned when no rule matches or the message is about
// an unrelated topic.
const IntentNotFound = "not_found"

// Rule pairs an ordered keyword set with an intent tag.
type Rule struct {
	Intent   string   `yaml:"intent"`
	Keywords []string `yaml:"keywords"`
}

var intentRules = mustLoadRules()

func mustLoadRules() []Rule {
	var doc struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(intentsYAML, &doc); err != nil {
		panic(fmt.Sprintf("knowledge: invalid intent rules: %v", err))
	}
	if len(doc.Rules) == 0 {
		panic("knowledge: empty intent rule list")
	}
	return doc.Rules
}

// offTopic lists subjects the assistant deliberately declines, so they
// classify as not_found rather than hitting a generic rule.
var offTopic = []string{
	"weather", "sports", "politics", "cooking", "movies", "music",
	"gaming", "programming", "coding", "software", "hardware",
	"cars", "fashion", "restaurants", "shopping", "entertainment",
	"cryptocurrency", "bitcoin", "forex", "crypto", "blockchain",
}

// MatchIntent classifies a message by substring matching against the
// ordered rule list, first match wins. Matching is case-insensitive.
// Rule order is behavior, not style: earlier rules shadow later ones.
func MatchIntent(message string) string {
	lowered := strings.ToLower(message)

	for _, rule := range intentRules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lowered, keyword) {
				return rule.Intent
			}
		}
	}

	for _, topic := range offTopic {
		if strings.Contains(lowered, topic) {
			return IntentNotFound
		}
	}

	return IntentNotFound
}
