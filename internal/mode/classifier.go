package mode

import (
	"context"
	"strings"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/domain"
)

// Classifier maps a message's text to a conversational mode. Implementations
// must never fail a turn: anything unclassifiable is domain.DefaultMode.
type Classifier interface {
	Classify(ctx context.Context, text string) domain.Mode
}

// rule pairs a mode with its trigger keywords. Matching is substring
// containment on the lowercased message, not word matching.
type rule struct {
	mode     domain.Mode
	keywords []string
}

// priorityRules is evaluated in order with first-match-wins. Recover is
// checked first: safety-relevant signals take priority even when growth or
// identity words appear in the same message. Reflect is last and matches
// the same mode the default falls back to.
var priorityRules = []rule{
	{
		mode: domain.ModeRecover,
		keywords: []string{
			"trauma", "abuse", "abused", "grief", "grieving", "assault",
			"self-harm", "self harm", "suicid", "hurt myself", "flashback",
			"panic attack", "nightmare", "violat", "ptsd", "loss of",
		},
	},
	{
		mode: domain.ModeRebuild,
		keywords: []string{
			"identity", "who i am", "who am i", "relationship", "boundar",
			"trust again", "self-worth", "self worth", "confidence",
			"rebuild", "start over", "breakup", "divorce",
		},
	},
	{
		mode: domain.ModeEvolve,
		keywords: []string{
			"goal", "goals", "growth", "grow", "future", "purpose",
			"transform", "improve", "ambition", "dream", "potential",
			"next chapter", "better version",
		},
	},
	{
		mode: domain.ModeReflect,
		keywords: []string{
			"feel", "feeling", "felt", "emotion", "thought", "confused",
			"process", "understand myself", "journal", "today i",
		},
	},
}

// KeywordClassifier is the canonical, always-available classifier. It is a
// pure function of the input text.
type KeywordClassifier struct{}

// NewKeywordClassifier creates a keyword classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify returns the first mode whose keyword list matches text, or
// domain.DefaultMode when nothing matches.
func (c *KeywordClassifier) Classify(_ context.Context, text string) domain.Mode {
	if text == "" {
		return domain.DefaultMode
	}

	lowered := strings.ToLower(text)
	for _, r := range priorityRules {
		for _, kw := range r.keywords {
			if strings.Contains(lowered, kw) {
				return r.mode
			}
		}
	}

	return domain.DefaultMode
}
