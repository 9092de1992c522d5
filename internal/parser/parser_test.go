package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expectedCards int
		expectedFront string
		expectedBack  string
		expectedHint  string
	}{
		{
			name:          "Simple Q&A",
			input:         "Q: What is the capital of France?\nA: Paris",
			expectedCards: 1,
			expectedFront: "What is the capital of France?",
			expectedBack:  "Paris",
		},
		{
			name:          "Q, A and H",
			input:         "Q: What is the powerhouse of the cell?\nA: Mitochondria\nH: Think about energy production",
			expectedCards: 1,
			expectedFront: "What is the powerhouse of the cell?",
			expectedBack:  "Mitochondria",
			expectedHint:  "Think about energy production",
		},
		{
			name: "Multiline back",
			input: `
Q: What are the primary colors?
A: Red
Blue
Yellow
`,
			expectedCards: 1,
			expectedFront: "What are the primary colors?",
			expectedBack:  "Red\nBlue\nYellow",
		},
		{
			name: "Two cards",
			input: `
Q: Hola
A: Hello

Q: Gracias
A: Thank you
`,
			expectedCards: 2,
		},
		{
			name:          "Separator ends a card",
			input:         "Q: one\nA: 1\n---\nstray text\nQ: two\nA: 2",
			expectedCards: 2,
		},
		{
			name:          "Card without a front is dropped",
			input:         "A: orphan answer\n---\nQ: kept\nA: yes",
			expectedCards: 1,
			expectedFront: "kept",
			expectedBack:  "yes",
		},
		{
			name:          "No cards, just text",
			input:         "This is a file with no questions.",
			expectedCards: 0,
		},
		{
			name:          "Prefixes with no space",
			input:         "Q:Question\nA:Answer",
			expectedCards: 1,
			expectedFront: "Question",
			expectedBack:  "Answer",
		},
		{
			name:          "Windows line endings",
			input:         "Q: Hola\r\nA: Hello\r\n",
			expectedCards: 1,
			expectedFront: "Hola",
			expectedBack:  "Hello",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Parse(strings.NewReader(tc.input))
			require.NoError(t, err)
			require.Len(t, doc.Cards, tc.expectedCards)

			if tc.expectedCards == 1 {
				card := doc.Cards[0]
				assert.Equal(t, tc.expectedFront, card.Front)
				assert.Equal(t, tc.expectedBack, card.Back)
				assert.Equal(t, tc.expectedHint, card.Hint)
			}
		})
	}
}

func TestParseFrontMatter(t *testing.T) {
	input := `---
title: Spanish Vocabulary
description: Common Spanish words and phrases
tags:
  - language
  - spanish
---
Q: Hola
A: Hello
---
Q: Gracias
A: Thank you
`
	doc, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "Spanish Vocabulary", doc.Meta.Title)
	assert.Equal(t, "Common Spanish words and phrases", doc.Meta.Description)
	assert.Equal(t, []string{"language", "spanish"}, doc.Meta.Tags)
	require.Len(t, doc.Cards, 2)
	assert.Equal(t, "Gracias", doc.Cards[1].Front)
}

func TestParseLeadingSeparatorBeforeCard(t *testing.T) {
	doc, err := Parse(strings.NewReader("---\nQ: Capital of France?\nA: Paris\n---\nQ: 2+2\nA: 4\n"))
	require.NoError(t, err)

	assert.Empty(t, doc.Meta.Title)
	require.Len(t, doc.Cards, 2)
	assert.Equal(t, "Capital of France?", doc.Cards[0].Front)
	assert.Equal(t, "Paris", doc.Cards[0].Back)
	assert.Equal(t, "2+2", doc.Cards[1].Front)

	doc, err = Parse(strings.NewReader("---\nQ: only card\nA: never closed\n"))
	require.NoError(t, err)
	require.Len(t, doc.Cards, 1)
	assert.Equal(t, "never closed", doc.Cards[0].Back)
}

func TestParseFrontMatterErrors(t *testing.T) {
	_, err := Parse(strings.NewReader("---\ntitle: open\ndescription: never closed\n"))
	assert.ErrorIs(t, err, ErrUnterminatedFrontMatter)

	_, err = Parse(strings.NewReader("---\ntitle: [unbalanced\n---\nQ: a\nA: b\n"))
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.md")
	require.NoError(t, os.WriteFile(path, []byte("Q: 2+2\nA: 4\n"), 0o644))

	doc, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, doc.Cards, 1)
	assert.Equal(t, "4", doc.Cards[0].Back)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}
