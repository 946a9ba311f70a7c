package mode

import (
	"context"
	"strings"
	"time"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/domain"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/llm"
	"github.com/rs/zerolog/log"
)

// classifyInstruction enumerates exactly the four mode literals. The model
// must answer with one of them; anything else falls back to the keyword
// classifier.
const classifyInstruction = "Classify the emotional focus of the following message into exactly one " +
	"of these four categories: reflect, recover, rebuild, evolve. " +
	"reflect = general emotional processing. " +
	"recover = trauma, abuse, grief, or safety concerns. " +
	"rebuild = identity, relationships, or boundaries. " +
	"evolve = goals, growth, or transformation. " +
	"Respond with only the single category word."

const classifyTimeout = 5 * time.Second

// ModelClassifier classifies via the completion service with the keyword
// classifier as the always-available fallback. It never returns an error
// and never blocks a turn beyond its own timeout.
type ModelClassifier struct {
	router   *llm.Router
	fallback Classifier
}

// NewModelClassifier creates an LLM-backed classifier with a keyword fallback.
func NewModelClassifier(router *llm.Router) *ModelClassifier {
	return &ModelClassifier{
		router:   router,
		fallback: NewKeywordClassifier(),
	}
}

// Classify asks the default provider to label the message alone, with no
// history. Provider errors and unparseable answers degrade to the keyword
// classifier rather than failing.
func (c *ModelClassifier) Classify(ctx context.Context, text string) domain.Mode {
	if text == "" {
		return domain.DefaultMode
	}

	provider, err := c.router.GetProvider("")
	if err != nil {
		return c.fallback.Classify(ctx, text)
	}

	ctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	resp, err := provider.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: classifyInstruction},
			{Role: llm.RoleUser, Content: text},
		},
		Temperature: 0,
		MaxTokens:   8,
	}, "")
	if err != nil {
		log.Warn().Err(err).Msg("model classification failed, using keyword classifier")
		return c.fallback.Classify(ctx, text)
	}

	answer := domain.Mode(strings.ToLower(strings.TrimSpace(resp.Text)))
	if answer.IsValid() {
		return answer
	}

	return c.fallback.Classify(ctx, text)
}
