package models

// Clone returns a deep copy of the grid.
func (s BaseState) Clone() BaseState {
	if s == nil {
		return nil
	}
	out := make(BaseState, len(s))
	for r, row := range s {
		out[r] = make([][]string, len(row))
		for g, group := range row {
			out[r][g] = append([]string(nil), group...)
			if out[r][g] == nil {
				out[r][g] = []string{}
			}
		}
	}
	return out
}

func (o BuildingOrder) Clone() BuildingOrder {
	return append(BuildingOrder{}, o...)
}

func (u UnitSlots) Clone() UnitSlots {
	return UnitSlots{Count: u.Count, Units: append([]string(nil), u.Units...)}
}

// CloneBaseStates deep-copies a per-faction grid map.
func CloneBaseStates(in map[Faction]BaseState) map[Faction]BaseState {
	out := make(map[Faction]BaseState, len(in))
	for f, s := range in {
		out[f] = s.Clone()
	}
	return out
}

// CloneBuildingOrders deep-copies a per-faction order map.
func CloneBuildingOrders(in map[Faction]BuildingOrder) map[Faction]BuildingOrder {
	out := make(map[Faction]BuildingOrder, len(in))
	for f, o := range in {
		out[f] = o.Clone()
	}
	return out
}

func cloneUnitSlots(in map[Faction]UnitSlots) map[Faction]UnitSlots {
	out := make(map[Faction]UnitSlots, len(in))
	for f, u := range in {
		out[f] = u.Clone()
	}
	return out
}

func (b SavedBuild) Clone() SavedBuild {
	b.MainBaseState = CloneBaseStates(b.MainBaseState)
	b.BuildingOrder = CloneBuildingOrders(b.BuildingOrder)
	return b
}

// Clone returns a deep copy sharing no containers with d.
func (d *Document) Clone() *Document {
	out := *d
	out.MainBaseState = CloneBaseStates(d.MainBaseState)
	out.BuildingOrder = CloneBuildingOrders(d.BuildingOrder)
	out.UnitSlots = cloneUnitSlots(d.UnitSlots)
	out.SavedBuilds = make([]SavedBuild, len(d.SavedBuilds))
	for i, b := range d.SavedBuilds {
		out.SavedBuilds[i] = b.Clone()
	}
	return &out
}
