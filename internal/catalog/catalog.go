// Package catalog holds the static table of automations the dashboard can
// launch. The catalog is loaded once at startup and never changes.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Automation describes one externally invocable script.
type Automation struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Command     string `yaml:"command"`
	OutputKind  string `yaml:"output_kind"`
}

// Catalog is an immutable, id-keyed set of automations.
type Catalog struct {
	byID  map[string]Automation
	order []string
}

type catalogFile struct {
	Automations []Automation `yaml:"automations"`
}

// Load reads the catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}

	return New(cf.Automations)
}

// New builds a catalog from a list of automations. An empty list is valid.
func New(automations []Automation) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Automation, len(automations))}

	for i, a := range automations {
		if a.ID == "" {
			return nil, fmt.Errorf("automation at index %d has no id", i)
		}
		if a.Command == "" {
			return nil, fmt.Errorf("automation %q has no command", a.ID)
		}
		if _, exists := c.byID[a.ID]; exists {
			return nil, fmt.Errorf("duplicate automation id %q", a.ID)
		}
		if a.Name == "" {
			a.Name = a.ID
		}
		c.byID[a.ID] = a
		c.order = append(c.order, a.ID)
	}

	sort.Strings(c.order)
	return c, nil
}

// Get looks up an automation by id.
func (c *Catalog) Get(id string) (Automation, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// List returns all automations ordered by id.
func (c *Catalog) List() []Automation {
	out := make([]Automation, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.byID)
}
