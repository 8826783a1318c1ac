package catalog

import (
	"errors"
	"fmt"
)

// Category tags a template and a quote pool.
type Category string

const (
	GoodMorning  Category = "GOOD_MORNING"
	Motivational Category = "MOTIVATIONAL"
	Shayari      Category = "SHAYARI"
	Religious    Category = "RELIGIOUS"
	Love         Category = "LOVE"
	Festival     Category = "FESTIVAL"
)

// ErrUnknownCategory is returned by ParseCategory for tags outside the taxonomy.
var ErrUnknownCategory = errors.New("unknown category")

var categoryOrder = []Category{GoodMorning, Motivational, Shayari, Religious, Love, Festival}

var categoryLabels = map[Category]string{
	GoodMorning:  "गुड मॉर्निंग",
	Motivational: "प्रेरक",
	Shayari:      "शायरी",
	Religious:    "धार्मिक",
	Love:         "प्रेम",
	Festival:     "त्योहार",
}

// Categories returns the taxonomy in display order.
func Categories() []Category {
	return append([]Category(nil), categoryOrder...)
}

// ParseCategory validates a category tag.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categoryLabels[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Label is the display name shown on the category pills.
func (c Category) Label() string { return categoryLabels[c] }

// Orientation of the backing image.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Rect is a placement region in preview pixels.
type Rect struct {
	X      int `yaml:"x" json:"x"`
	Y      int `yaml:"y" json:"y"`
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

func (r *Rect) copy() *Rect {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Template is a static background design. Placement regions are optional;
// the reduced view leaves name, photo and date unset.
type Template struct {
	ID              string      `yaml:"id" json:"id"`
	FileName        string      `yaml:"fileName" json:"fileName"`
	PreviewFileName string      `yaml:"previewFileName" json:"previewFileName"`
	Orientation     Orientation `yaml:"orientation" json:"orientation"`
	Categories      []Category  `yaml:"categories" json:"categories"`
	Name            *Rect       `yaml:"nameBounds,omitempty" json:"nameBounds,omitempty"`
	Photo           *Rect       `yaml:"photoBounds,omitempty" json:"photoBounds,omitempty"`
	Date            *Rect       `yaml:"dateBounds,omitempty" json:"dateBounds,omitempty"`
	Quote           *Rect       `yaml:"quoteBounds,omitempty" json:"quoteBounds,omitempty"`
}

// HasCategory reports whether c is one of the template's tags.
func (t Template) HasCategory(c Category) bool {
	for _, tc := range t.Categories {
		if tc == c {
			return true
		}
	}
	return false
}

func (t Template) reduced() Template {
	t = t.clone()
	t.Name, t.Photo, t.Date = nil, nil, nil
	return t
}

func (t Template) clone() Template {
	t.Categories = append([]Category(nil), t.Categories...)
	t.Name, t.Photo, t.Date, t.Quote = t.Name.copy(), t.Photo.copy(), t.Date.copy(), t.Quote.copy()
	return t
}

// Variant selects which view of the catalog a query sees.
type Variant int

const (
	// Reduced is the free view without name, photo and date placement.
	Reduced Variant = iota
	// Full carries every placement region.
	Full
)

// VariantFor maps the premium flag to a catalog view.
func VariantFor(isPremium bool) Variant {
	if isPremium {
		return Full
	}
	return Reduced
}

func (v Variant) String() string {
	if v == Full {
		return "full"
	}
	return "reduced"
}
