// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the filing-cloud pipeline.
// Documents flow from the loader into the entity extractor, which reduces them
// to Frequencies. The curator turns Frequencies into a Curation, and the
// selected Weights drive the renderer and the keyword report.
package types

// Document is the raw text of one corpus file. Path is the ordering key;
// loaders return documents sorted by Path.
type Document struct {
	// Path is the file the text was read from.
	Path string `json:"path" yaml:"path"`

	// Text is the file content, unmodified.
	Text string `json:"-" yaml:"-"`
}

// Texts returns the document texts in order.
func Texts(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Text
	}
	return out
}

// Category is the semantic label attached to a recognized entity.
type Category string

const (
	CategoryPerson  Category = "PERSON"
	CategoryEvent   Category = "EVENT"
	CategoryProduct Category = "PRODUCT"
	CategoryLaw     Category = "LAW"
)

// allowedCategories is the closed set of categories kept by extraction.
var allowedCategories = map[Category]bool{
	CategoryPerson:  true,
	CategoryEvent:   true,
	CategoryProduct: true,
	CategoryLaw:     true,
}

// Allowed reports whether mentions of this category are counted.
func (c Category) Allowed() bool {
	return allowedCategories[c]
}

// AllowedCategories returns the counted categories in a fixed order.
func AllowedCategories() []Category {
	return []Category{CategoryPerson, CategoryEvent, CategoryProduct, CategoryLaw}
}

// Mention is one recognized entity span.
type Mention struct {
	Text     string   `json:"text" yaml:"text"`
	Category Category `json:"label" yaml:"label"`
}

// Frequencies maps the exact surface text of an entity to the number of times
// it was recognized across a corpus. Keys are case-sensitive and never
// normalized; every value is at least 1.
type Frequencies map[string]int

// Add merges other into f.
func (f Frequencies) Add(other Frequencies) {
	for k, v := range other {
		f[k] += v
	}
}

// Weights converts the counts to renderer weights, value for value.
func (f Frequencies) Weights() Weights {
	w := make(Weights, len(f))
	for k, v := range f {
		w[k] = float64(v)
	}
	return w
}
