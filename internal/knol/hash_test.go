package knol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "what is dna?", Normalize("  What is DNA? \r\n"))
	assert.Equal(t, "line one\nline two", Normalize("Line One\r\nLine Two\n"))
}

func TestHash(t *testing.T) {
	t.Run("generates correct hash", func(t *testing.T) {
		// sha256 of "6:deck-11:q1:a"
		expected := "8c006f4e3c2b447c423197c396b557e459008c880ebeb9952fc466fe751c2e12"
		assert.Equal(t, expected, Hash("deck-1", "Q", "A"))
	})

	t.Run("normalization produces same hash", func(t *testing.T) {
		assert.Equal(t,
			Hash("bio", "  what is dna? ", "Deoxyribonucleic acid"),
			Hash("bio", "What Is DNA?", "deoxyribonucleic acid\r\n"),
		)
	})

	t.Run("deck is part of the identity", func(t *testing.T) {
		assert.NotEqual(t, Hash("deck-1", "Hola", "Hello"), Hash("deck-2", "Hola", "Hello"))
	})

	t.Run("field boundaries matter", func(t *testing.T) {
		assert.NotEqual(t, Hash("d", "ab", "c"), Hash("d", "a", "bc"))
	})

	t.Run("multi-line fields do not collide", func(t *testing.T) {
		assert.NotEqual(t,
			Hash("deck", "Line one\nLine two", "answer"),
			Hash("deck", "Line one", "Line two\nanswer"),
		)
		assert.NotEqual(t,
			Hash("deck\nfront", "back", "x"),
			Hash("deck", "front\nback", "x"),
		)
	})

	t.Run("different cards have different hashes", func(t *testing.T) {
		assert.NotEqual(t, Hash("d", "Card 1", "x"), Hash("d", "Card 2", "x"))
	})
}
