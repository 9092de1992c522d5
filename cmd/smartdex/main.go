// Command smartdex is a spaced repetition flashcard tool. Decks come from
// Markdown files in local directories or git repositories, or are created
// through the HTTP API.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
