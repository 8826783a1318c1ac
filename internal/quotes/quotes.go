// Package quotes holds the bundled display strings drawn onto cards.
package quotes

import (
	_ "embed"
	"fmt"
	"math/rand/v2"

	"gopkg.in/yaml.v3"

	"github.com/psytech/suvichar/internal/catalog"
)

//go:embed quotes.yaml
var bundledQuotes []byte

// Pool is a category-keyed set of quotes. It is read-only after load.
type Pool struct {
	byCategory map[catalog.Category][]string
}

// Bundled parses the quotes compiled into the binary.
func Bundled() (*Pool, error) {
	return Parse(bundledQuotes)
}

// Parse decodes a YAML mapping of category to quote list.
func Parse(raw []byte) (*Pool, error) {
	var doc map[string][]string
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode quotes: %w", err)
	}
	p := &Pool{byCategory: make(map[catalog.Category][]string, len(doc))}
	for key, lines := range doc {
		cat, err := catalog.ParseCategory(key)
		if err != nil {
			return nil, err
		}
		p.byCategory[cat] = append([]string(nil), lines...)
	}
	return p, nil
}

// All returns the quotes for cat, empty when none exist.
func (p *Pool) All(cat catalog.Category) []string {
	return append([]string{}, p.byCategory[cat]...)
}

// Random picks one quote for cat. The pick is not persisted or repeatable.
func (p *Pool) Random(cat catalog.Category) (string, bool) {
	lines := p.byCategory[cat]
	if len(lines) == 0 {
		return "", false
	}
	return lines[rand.IntN(len(lines))], true
}
