// Package catalog is the read-only set of card templates bundled with the
// app. Templates are declared once in templates.yaml; the free view is
// derived from the same records so the two can never drift.
package catalog

import (
	_ "embed"
	"fmt"
	"math/rand/v2"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var bundledTemplates []byte

// Catalog is immutable after construction and safe for concurrent reads.
type Catalog struct {
	templates []Template
	byID      map[string]int
}

type document struct {
	Templates []Template `yaml:"templates"`
}

// Bundled parses the templates compiled into the binary.
func Bundled() (*Catalog, error) {
	return Parse(bundledTemplates)
}

// MustBundled is Bundled for program start-up, where a broken bundle is a
// build defect.
func MustBundled() *Catalog {
	c, err := Bundled()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes a YAML catalog document.
func Parse(raw []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(doc.Templates)
}

// New validates templates and builds a catalog preserving their order.
func New(templates []Template) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int, len(templates))}
	for i, t := range templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template %d: missing id", i)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("template %s: duplicate id", t.ID)
		}
		if len(t.Categories) == 0 {
			return nil, fmt.Errorf("template %s: no categories", t.ID)
		}
		for _, cat := range t.Categories {
			if _, err := ParseCategory(string(cat)); err != nil {
				return nil, fmt.Errorf("template %s: %w", t.ID, err)
			}
		}
		switch t.Orientation {
		case Portrait, Landscape:
		default:
			return nil, fmt.Errorf("template %s: bad orientation %q", t.ID, t.Orientation)
		}
		c.byID[t.ID] = i
		c.templates = append(c.templates, t.clone())
	}
	return c, nil
}

func view(t Template, v Variant) Template {
	if v == Full {
		return t.clone()
	}
	return t.reduced()
}

// ListAll returns every template in catalog order.
func (c *Catalog) ListAll(v Variant) []Template {
	out := make([]Template, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, view(t, v))
	}
	return out
}

// ListByCategory returns the templates tagged cat, in catalog order. An
// unknown or empty category yields an empty slice.
func (c *Catalog) ListByCategory(v Variant, cat Category) []Template {
	out := []Template{}
	for _, t := range c.templates {
		if t.HasCategory(cat) {
			out = append(out, view(t, v))
		}
	}
	return out
}

// GetRandomByCategory picks uniformly among the templates tagged cat.
// Selection is not repeatable.
func (c *Catalog) GetRandomByCategory(v Variant, cat Category) (Template, bool) {
	matches := c.ListByCategory(v, cat)
	if len(matches) == 0 {
		return Template{}, false
	}
	return matches[rand.IntN(len(matches))], true
}

// GetByID looks a template up by id.
func (c *Catalog) GetByID(v Variant, id string) (Template, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Template{}, false
	}
	return view(c.templates[i], v), true
}

// Len is the number of templates.
func (c *Catalog) Len() int { return len(c.templates) }
