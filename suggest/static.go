package suggest

import (
	"context"
	"fmt"
	"os"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/formula"
)

// StaticSource searches a fixed catalogue of suggestions. A suggestion matches
// when the query's characters appear in order in its name, ignoring case.
type StaticSource struct {
	list []formula.Suggestion
}

// NewStatic creates a source over a copy of list.
func NewStatic(list []formula.Suggestion) *StaticSource {
	return &StaticSource{list: append([]formula.Suggestion(nil), list...)}
}

// catalogue is the file format of LoadStatic.
type catalogue struct {
	Suggestions []formula.Suggestion `yaml:"suggestions"`
}

// LoadStatic reads a YAML catalogue like:
//
//	suggestions:
//	  - id: "1"
//	    name: price
//	    category: sales
//	    value: 12.5
//	  - id: "2"
//	    name: total
//	    value: price * 2
func LoadStatic(path string) (*StaticSource, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("suggest: reading catalogue: %w", err)
	}
	var c catalogue
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("suggest: parsing catalogue %s: %w", path, err)
	}
	for i, s := range c.Suggestions {
		if s.ID == "" || s.Name == "" {
			return nil, fmt.Errorf("suggest: catalogue %s: entry %d needs an id and a name", path, i+1)
		}
	}
	return &StaticSource{list: c.Suggestions}, nil
}

// Search returns the suggestions whose names match the query in catalogue
// order. An empty query matches nothing.
func (s *StaticSource) Search(ctx context.Context, query string) ([]formula.Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if query == "" {
		return nil, nil
	}
	var r []formula.Suggestion
	for _, v := range s.list {
		if fuzzy.MatchFold(query, v.Name) {
			r = append(r, v)
		}
	}
	return r, nil
}

// All returns the whole catalogue.
func (s *StaticSource) All() []formula.Suggestion {
	return append([]formula.Suggestion(nil), s.list...)
}
