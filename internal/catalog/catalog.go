// Package catalog holds the read-only game data the planner displays:
// buildings, per-faction units and heroes, and research developments.
// The store never consults it; ids stay opaque there.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tatianab/spice-planner/internal/models"
)

//go:embed catalog.yaml
var catalogYAML []byte

type Building struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type Unit struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	CP   int    `yaml:"cp"`
}

type Hero struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type Development struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Tier     int    `yaml:"tier"`
	Requires string `yaml:"requires"`
	Replaces string `yaml:"replaces"`
}

type FactionData struct {
	Units  []Unit `yaml:"units"`
	Heroes []Hero `yaml:"heroes"`
}

// Catalog is the decoded game data.
type Catalog struct {
	Buildings    []Building                     `yaml:"buildings"`
	Factions     map[models.Faction]FactionData `yaml:"factions"`
	Developments []Development                  `yaml:"developments"`
}

// Load decodes the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for f := range c.Factions {
		if !f.Valid() {
			return nil, fmt.Errorf("parse catalog: unknown faction %q", f)
		}
	}
	return &c, nil
}

// Building returns the building with id.
func (c *Catalog) Building(id string) (Building, bool) {
	for _, b := range c.Buildings {
		if b.ID == id {
			return b, true
		}
	}
	return Building{}, false
}

// BuildingName resolves id to a display name, or returns id unchanged.
func (c *Catalog) BuildingName(id string) string {
	if b, ok := c.Building(id); ok {
		return b.Name
	}
	return id
}

// AvailableBuildings lists the buildings not already placed.
func (c *Catalog) AvailableBuildings(used []string) []Building {
	placed := make(map[string]bool, len(used))
	for _, id := range used {
		placed[id] = true
	}
	var out []Building
	for _, b := range c.Buildings {
		if !placed[b.ID] {
			out = append(out, b)
		}
	}
	return out
}

// Unit returns a faction's unit by id.
func (c *Catalog) Unit(f models.Faction, id string) (Unit, bool) {
	for _, u := range c.Factions[f].Units {
		if u.ID == id {
			return u, true
		}
	}
	return Unit{}, false
}

// Hero returns a faction's hero by id.
func (c *Catalog) Hero(f models.Faction, id string) (Hero, bool) {
	for _, h := range c.Factions[f].Heroes {
		if h.ID == id {
			return h, true
		}
	}
	return Hero{}, false
}

// UnitName resolves a unit or hero id to a display name.
func (c *Catalog) UnitName(f models.Faction, id string) string {
	if u, ok := c.Unit(f, id); ok {
		return u.Name
	}
	if h, ok := c.Hero(f, id); ok {
		return h.Name
	}
	return id
}

// UnitCost returns a unit's command-point cost; unknown units and heroes
// cost nothing.
func (c *Catalog) UnitCost(f models.Faction, id string) int {
	u, _ := c.Unit(f, id)
	return u.CP
}

// Development returns a development by id.
func (c *Catalog) Development(id string) (Development, bool) {
	for _, d := range c.Developments {
		if d.ID == id {
			return d, true
		}
	}
	return Development{}, false
}
