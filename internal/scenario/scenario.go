// Package scenario holds the catalogue of conversation scenes a learner can
// choose from.
package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is one conversation scene. Description is what the tutor sees.
type Scenario struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// Builtin returns the default scenes.
func Builtin() []Scenario {
	return []Scenario{
		{ID: "restaurant", Title: "Restaurant", Description: "At a restaurant ordering food"},
		{ID: "party", Title: "Party", Description: "Meeting someone new at a party"},
		{ID: "shopping", Title: "Shopping", Description: "Shopping for clothes at a store"},
		{ID: "directions", Title: "Directions", Description: "Asking for directions in a new city"},
		{ID: "interview", Title: "Job interview", Description: "Job interview practice"},
	}
}

// Catalog is an ordered, id-indexed set of scenarios.
type Catalog struct {
	items []Scenario
	byID  map[string]int
}

// NewCatalog builds a catalog. Later entries with an existing id replace the
// earlier one in place.
func NewCatalog(items []Scenario) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int)}
	for _, s := range items {
		if err := c.put(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) put(s Scenario) error {
	s.ID = strings.TrimSpace(s.ID)
	s.Description = strings.TrimSpace(s.Description)
	if s.ID == "" {
		return fmt.Errorf("scenario %q: id is required", s.Title)
	}
	if s.Description == "" {
		return fmt.Errorf("scenario %q: description is required", s.ID)
	}
	if s.Title == "" {
		s.Title = s.Description
	}
	if i, ok := c.byID[s.ID]; ok {
		c.items[i] = s
		return nil
	}
	c.byID[s.ID] = len(c.items)
	c.items = append(c.items, s)
	return nil
}

// All returns the scenarios in catalogue order.
func (c *Catalog) All() []Scenario {
	out := make([]Scenario, len(c.items))
	copy(out, c.items)
	return out
}

// Get looks a scenario up by id.
func (c *Catalog) Get(id string) (Scenario, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Scenario{}, false
	}
	return c.items[i], true
}

// Resolve maps a learner's choice to the scene description. An unknown id is
// taken as a free-form scene.
func (c *Catalog) Resolve(choice string) string {
	if s, ok := c.Get(choice); ok {
		return s.Description
	}
	return strings.TrimSpace(choice)
}

// File is the on-disk catalogue format.
type File struct {
	// Replace drops the built-in scenes instead of extending them.
	Replace   bool       `yaml:"replace"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// Parse decodes a YAML catalogue and merges it with the built-ins.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenarios YAML: %w", err)
	}
	items := f.Scenarios
	if !f.Replace {
		items = append(Builtin(), f.Scenarios...)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("scenario catalogue is empty")
	}
	return NewCatalog(items)
}

// Load returns the built-in catalogue, or the built-ins merged with the YAML
// file at path when path is non-empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return NewCatalog(Builtin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenarios file: %w", err)
	}
	return Parse(data)
}
