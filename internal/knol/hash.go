// Package knol derives stable card identities from card content.
package knol

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Normalize cleans one field of a card: it lowercases, normalizes line
// endings and trims surrounding whitespace.
func Normalize(part string) string {
	p := strings.ToLower(part)
	p = strings.ReplaceAll(p, "\r\n", "\n")
	return strings.TrimSpace(p)
}

// Hash returns the SHA-256 of the normalized deck ID, front and back as a hex
// string. The hint is left out so that editing it keeps the card's
// scheduling history.
//
// Each field is written with its length in front of it. Fronts and backs
// may span several lines, so no separator character alone can keep
// "a\nb"+"c" and "a"+"b\nc" apart.
func Hash(deckID, front, back string) string {
	h := sha256.New()
	for _, part := range []string{deckID, front, back} {
		p := Normalize(part)
		fmt.Fprintf(h, "%d:%s", len(p), p)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
