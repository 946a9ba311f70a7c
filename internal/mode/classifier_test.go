package mode

import (
	"context"
	"testing"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifier_Classify(t *testing.T) {
	ctx := context.Background()
	c := NewKeywordClassifier()

	t.Run("empty text defaults to reflect", func(t *testing.T) {
		assert.Equal(t, domain.ModeReflect, c.Classify(ctx, ""))
	})

	t.Run("no keywords defaults to reflect", func(t *testing.T) {
		assert.Equal(t, domain.ModeReflect, c.Classify(ctx, "the bus was late again"))
	})

	t.Run("matching is case insensitive", func(t *testing.T) {
		assert.Equal(t, domain.ModeEvolve, c.Classify(ctx, "MY GOALS FOR THE YEAR"))
	})

	t.Run("recover keywords", func(t *testing.T) {
		assert.Equal(t, domain.ModeRecover, c.Classify(ctx, "I keep having flashbacks to the accident"))
		assert.Equal(t, domain.ModeRecover, c.Classify(ctx, "still grieving my father"))
	})

	t.Run("rebuild keywords", func(t *testing.T) {
		assert.Equal(t, domain.ModeRebuild, c.Classify(ctx, "I need to set boundaries with my family"))
		assert.Equal(t, domain.ModeRebuild, c.Classify(ctx, "after the divorce I don't know who I am"))
	})

	t.Run("evolve keywords", func(t *testing.T) {
		assert.Equal(t, domain.ModeEvolve, c.Classify(ctx, "I want to grow and find my purpose"))
	})

	t.Run("reflect keywords", func(t *testing.T) {
		assert.Equal(t, domain.ModeReflect, c.Classify(ctx, "I feel confused about everything"))
	})

	t.Run("recover outranks evolve", func(t *testing.T) {
		assert.Equal(t, domain.ModeRecover, c.Classify(ctx, "my goal is to move past the trauma"))
	})

	t.Run("rebuild outranks reflect", func(t *testing.T) {
		assert.Equal(t, domain.ModeRebuild, c.Classify(ctx, "I feel like my relationship changed me"))
	})

	t.Run("substring match crosses word boundaries", func(t *testing.T) {
		// "suicid" matches both "suicide" and "suicidal".
		assert.Equal(t, domain.ModeRecover, c.Classify(ctx, "I've been having suicidal thoughts"))
	})
}
