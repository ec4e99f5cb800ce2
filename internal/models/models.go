package models

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Faction is one of the seven playable sides. Every per-faction map in a
// Document is keyed by exactly these labels.
type Faction string

const (
	Harkonnen Faction = "harkonnen"
	Atreides  Faction = "atreides"
	Ecaz      Faction = "ecaz"
	Smuggler  Faction = "smuggler"
	Vernius   Faction = "vernius"
	Fremen    Faction = "fremen"
	Corrino   Faction = "corrino"
)

// DefaultFaction is selected on a fresh document.
const DefaultFaction = Atreides

// Factions lists every faction in display order.
var Factions = []Faction{Harkonnen, Atreides, Ecaz, Smuggler, Vernius, Fremen, Corrino}

// Valid reports whether f is one of the known factions.
func (f Faction) Valid() bool {
	return f.Index() >= 0
}

// Index returns the position of f in Factions, or -1.
func (f Faction) Index() int {
	for i, known := range Factions {
		if known == f {
			return i
		}
	}
	return -1
}

// Layout is the static shape of a faction's base: rows of building-group sizes.
type Layout [][]int

// BaseState is the grid of placed buildings: row -> group -> cell.
// An empty string is an empty cell; anything else is an opaque building id.
type BaseState [][][]string

// Coord addresses one cell of a BaseState.
type Coord struct {
	Row   int
	Group int
	Cell  int
}

func (c Coord) String() string {
	return fmt.Sprintf("%d/%d/%d", c.Row, c.Group, c.Cell)
}

// MarshalYAML stores a coordinate as a flow sequence [row, group, cell].
func (c Coord) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range []int{c.Row, c.Group, c.Cell} {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(v)})
	}
	return node, nil
}

func (c *Coord) UnmarshalYAML(value *yaml.Node) error {
	var triple []int
	if err := value.Decode(&triple); err != nil {
		return err
	}
	if len(triple) != 3 {
		return fmt.Errorf("coordinate needs 3 values, got %d", len(triple))
	}
	*c = Coord{Row: triple[0], Group: triple[1], Cell: triple[2]}
	return nil
}

// BuildingOrder records occupied cells in placement order.
type BuildingOrder []Coord

// UnitSlots is a faction's unit roster. Slot 0 is the "add" affordance and
// never holds a unit, slot HeroSlotIndex is reserved for a hero.
type UnitSlots struct {
	Count int      `yaml:"count"`
	Units []string `yaml:"units"`
}

const (
	AddSlotIndex     = 0
	HeroSlotIndex    = 1
	MaxUnitSlotCount = 16
	UnitBudgetCP     = 65
	defaultSlotCount = 2
)

// SavedBuild is a named copy of a build, independent of the live document.
type SavedBuild struct {
	ID              string                    `yaml:"id"`
	Name            string                    `yaml:"name"`
	CreatedAt       time.Time                 `yaml:"createdAt"`
	SelectedFaction Faction                   `yaml:"selectedFaction"`
	MainBaseState   map[Faction]BaseState     `yaml:"mainBaseState"`
	BuildingOrder   map[Faction]BuildingOrder `yaml:"buildingOrder"`
}

// Document is the root persisted state.
type Document struct {
	SelectedFaction   Faction                   `yaml:"selectedFaction"`
	MainBaseState     map[Faction]BaseState     `yaml:"mainBaseState"`
	BuildingOrder     map[Faction]BuildingOrder `yaml:"buildingOrder"`
	UnitSlots         map[Faction]UnitSlots     `yaml:"unitSlots"`
	CurrentBuildName  string                    `yaml:"currentBuildName"`
	CurrentBuildID    string                    `yaml:"currentBuildId"`
	SavedBuilds       []SavedBuild              `yaml:"savedBuilds"`
	LastSavedSnapshot string                    `yaml:"lastSavedSnapshot"`
}

// SchemaVersion is the version written with every persisted Document.
//
//	1 mainBaseState
//	2 buildingOrder
//	3 currentBuildName, savedBuilds
//	4 lastSavedSnapshot
//	5 currentBuildId
//	6 build name fallback
//	7 unitSlots
const SchemaVersion = 7

// StorageKey is the fixed key of the persisted record.
const StorageKey = "spicy-techs-main-store"

// Envelope is the persisted record.
type Envelope struct {
	Version int       `yaml:"version"`
	State   *Document `yaml:"state"`
}

// FindSavedBuild returns the index of the saved build with id, or -1.
func (d *Document) FindSavedBuild(id string) int {
	if id == "" {
		return -1
	}
	for i := range d.SavedBuilds {
		if d.SavedBuilds[i].ID == id {
			return i
		}
	}
	return -1
}
