package models

import (
	"gopkg.in/yaml.v3"
)

// CurrentLayout returns the layout of the selected faction.
func CurrentLayout(d *Document) Layout {
	return LayoutFor(d.SelectedFaction)
}

// CurrentBaseState returns the selected faction's grid. The result aliases
// the document; callers that keep it must Clone it.
func CurrentBaseState(d *Document) BaseState {
	return d.MainBaseState[d.SelectedFaction]
}

// CurrentBuildingOrder returns the selected faction's placement order.
func CurrentBuildingOrder(d *Document) BuildingOrder {
	return d.BuildingOrder[d.SelectedFaction]
}

// UsedBuildingIDs lists the building ids placed on the selected faction's
// grid, row-major.
func UsedBuildingIDs(d *Document) []string {
	var used []string
	for _, row := range CurrentBaseState(d) {
		for _, group := range row {
			for _, cell := range group {
				if cell != "" {
					used = append(used, cell)
				}
			}
		}
	}
	return used
}

// IsBuildEmpty reports whether every cell of the selected faction is empty.
func IsBuildEmpty(d *Document) bool {
	return len(UsedBuildingIDs(d)) == 0
}

// IsBuildUpToDate reports whether the live build matches the last save.
func IsBuildUpToDate(d *Document) bool {
	return d.LastSavedSnapshot != "" && Snapshot(d) == d.LastSavedSnapshot
}

// OrderNumber returns the 1-based placement number of c on the selected
// faction, or 0 when the cell is not in the order.
func OrderNumber(d *Document, c Coord) int {
	for i, entry := range CurrentBuildingOrder(d) {
		if entry == c {
			return i + 1
		}
	}
	return 0
}

// snapshotContent is the build content compared for change detection.
// Field order is the serialization order.
type snapshotContent struct {
	SelectedFaction  Faction                   `yaml:"selectedFaction"`
	MainBaseState    map[Faction]BaseState     `yaml:"mainBaseState"`
	BuildingOrder    map[Faction]BuildingOrder `yaml:"buildingOrder"`
	CurrentBuildName string                    `yaml:"currentBuildName"`
}

// Snapshot serializes the build content of d deterministically. Saved builds,
// the current build id, the last snapshot and unit slots are bookkeeping and
// are left out.
func Snapshot(d *Document) string {
	return snapshotOf(d.SelectedFaction, d.MainBaseState, d.BuildingOrder, d.CurrentBuildName)
}

// SnapshotOfSaved returns the snapshot a document would have right after
// loading b.
func SnapshotOfSaved(b SavedBuild) string {
	return snapshotOf(b.SelectedFaction, b.MainBaseState, b.BuildingOrder, b.Name)
}

func snapshotOf(f Faction, state map[Faction]BaseState, order map[Faction]BuildingOrder, name string) string {
	out, err := yaml.Marshal(snapshotContent{
		SelectedFaction:  f,
		MainBaseState:    state,
		BuildingOrder:    normalizeOrders(order),
		CurrentBuildName: name,
	})
	if err != nil {
		// Only reachable with unmarshalable values, which these types cannot hold.
		return ""
	}
	return string(out)
}

func normalizeOrders(in map[Faction]BuildingOrder) map[Faction]BuildingOrder {
	out := make(map[Faction]BuildingOrder, len(in))
	for f, o := range in {
		if o == nil {
			o = BuildingOrder{}
		}
		out[f] = o
	}
	return out
}
