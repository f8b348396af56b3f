package nlu

import (
	"strings"

	"github.com/rashedsumon/ai-receptionist/models"
)

// IntentRule pairs an intent with the substrings that trigger it.
type IntentRule struct {
	Intent   models.IntentLabel `json:"intent" yaml:"intent"`
	Triggers []string           `json:"triggers" yaml:"triggers"`
}

// DefaultRules returns the built-in rule table. Order matters: the first
// intent with a matching trigger wins.
func DefaultRules() []IntentRule {
	return []IntentRule{
		{
			Intent: models.IntentBookViewing,
			Triggers: []string{
				"book", "viewing", "appointment", "visit", "schedule",
				"seeing", "show me", "see the",
			},
		},
		{
			Intent: models.IntentAvailability,
			Triggers: []string{
				"available", "is the", "still available", "vacant", "vacancy",
			},
		},
		{
			Intent: models.IntentConnectAgent,
			Triggers: []string{
				"connect", "agent", "human", "representative", "speak to", "transfer",
			},
		},
		{
			Intent: models.IntentSellProcess,
			Triggers: []string{
				"sell", "sell my home", "valuation", "how to sell",
			},
		},
		{
			Intent: models.IntentPricing,
			Triggers: []string{
				"price", "rent", "cost", "how much",
			},
		},
		{
			Intent: models.IntentGeneral,
			Triggers: []string{
				"hello", "hi", "info", "information", "question",
			},
		},
	}
}

// KeywordRules is a first-match-wins substring matcher over an ordered
// rule table.
type KeywordRules struct {
	rules []IntentRule
}

func NewKeywordRules(rules []IntentRule) *KeywordRules {
	compiled := make([]IntentRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Intent == "" {
			continue
		}
		triggers := make([]string, 0, len(rule.Triggers))
		for _, trigger := range rule.Triggers {
			// an empty trigger would match every input
			if trigger = strings.ToLower(trigger); trigger != "" {
				triggers = append(triggers, trigger)
			}
		}
		compiled = append(compiled, IntentRule{Intent: rule.Intent, Triggers: triggers})
	}

	return &KeywordRules{rules: compiled}
}

// Match returns the first intent whose trigger occurs in the lowercased text.
func (kr *KeywordRules) Match(text string) (models.IntentLabel, bool) {
	text = strings.ToLower(text)

	for _, rule := range kr.rules {
		if containsAnyKeyword(text, rule.Triggers) {
			return rule.Intent, true
		}
	}

	return "", false
}

// Rules returns a copy of the rule table in match order.
func (kr *KeywordRules) Rules() []IntentRule {
	out := make([]IntentRule, len(kr.rules))
	for i, rule := range kr.rules {
		out[i] = IntentRule{
			Intent:   rule.Intent,
			Triggers: append([]string(nil), rule.Triggers...),
		}
	}
	return out
}

func containsAnyKeyword(message string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	return false
}
