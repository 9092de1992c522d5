// Package parser reads decks written as Markdown.
//
// A deck file may start with a YAML front matter block fenced by "---" lines
// holding the deck's title, description and tags. Cards follow as blocks of
// "Q:" (front), "A:" (back) and "H:" (hint) lines. Lines without a prefix
// continue the current block. A new "Q:" or a "---" line ends a card.
// A leading "---" block that holds "Q:" or "A:" lines is a card, not front
// matter.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/conorfennell/smartdex/internal/domain"
)

const (
	frontPrefix = "Q:"
	backPrefix  = "A:"
	hintPrefix  = "H:"
	separator   = "---"
)

var ErrUnterminatedFrontMatter = errors.New("front matter is not closed with ---")

// Meta is the deck metadata from the front matter.
type Meta struct {
	Title       string
	Description string
	Tags        []string
}

// Document is a parsed deck file. Cards carry only their content.
type Document struct {
	Meta  Meta
	Cards []domain.Card
}

type field int

const (
	none field = iota
	front
	back
	hint
)

// ParseFile reads a file from the given path and parses it.
func ParseFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads a deck document from r.
func Parse(r io.Reader) (*Document, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	if len(lines) > 0 && lines[0] == separator {
		end := slices.Index(lines[1:], separator)
		block := lines[1:]
		if end >= 0 {
			block = lines[1 : end+1]
		}
		if !hasCardLines(block) {
			if end < 0 {
				return nil, ErrUnterminatedFrontMatter
			}
			meta, err := parseFrontMatter(block)
			if err != nil {
				return nil, err
			}
			doc.Meta = meta
			lines = lines[end+2:]
		}
	}

	var (
		current domain.Card
		block   []string
		state   = none
	)

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.TrimRight(strings.Join(block, "\n"), "\n")
		switch state {
		case front:
			current.Front = content
		case back:
			current.Back = content
		case hint:
			current.Hint = content
		}
		block = nil
	}

	finishCard := func() {
		flushBlock()
		if current.Front != "" {
			doc.Cards = append(doc.Cards, current)
		}
		current = domain.Card{}
		state = none
	}

	for _, line := range lines {
		if line == separator {
			finishCard()
			continue
		}

		next, content, ok := splitPrefix(line)
		if !ok {
			if state != none {
				block = append(block, line)
			}
			continue
		}

		flushBlock()
		if next == front && state != none {
			finishCard()
		}
		state = next
		block = append(block, content)
	}
	finishCard()

	return doc, nil
}

func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func hasCardLines(lines []string) bool {
	for _, line := range lines {
		if f, _, ok := splitPrefix(line); ok && (f == front || f == back) {
			return true
		}
	}
	return false
}

func splitPrefix(line string) (field, string, bool) {
	for _, p := range []struct {
		prefix string
		field  field
	}{
		{frontPrefix, front},
		{backPrefix, back},
		{hintPrefix, hint},
	} {
		if rest, ok := strings.CutPrefix(line, p.prefix); ok {
			return p.field, strings.TrimPrefix(rest, " "), true
		}
	}
	return none, "", false
}

func parseFrontMatter(lines []string) (Meta, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider([]byte(strings.Join(lines, "\n"))), yaml.Parser()); err != nil {
		return Meta{}, fmt.Errorf("invalid front matter: %w", err)
	}
	return Meta{
		Title:       k.String("title"),
		Description: k.String("description"),
		Tags:        k.Strings("tags"),
	}, nil
}
