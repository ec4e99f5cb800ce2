package store

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tatianab/spice-planner/internal/models"
)

var copySuffix = regexp.MustCompile(`\s+#\d+$`)

// SaveCurrentBuild stores the live build under name, falling back to the
// current build name and then to a default. A name already used by another
// saved build gets the next free " #k" suffix. When the live build came from
// a saved build, that entry is replaced in place; otherwise a new entry is
// added at the front of the list.
func (s *Store) SaveCurrentBuild(name string) models.SavedBuild {
	var saved models.SavedBuild
	s.update(func(d *models.Document) bool {
		saved = s.saveLocked(d, name).Clone()
		return true
	})
	return saved
}

func (s *Store) saveLocked(d *models.Document, name string) models.SavedBuild {
	resolved := strings.TrimSpace(name)
	if resolved == "" {
		resolved = strings.TrimSpace(d.CurrentBuildName)
	}
	if resolved == "" {
		resolved = models.DefaultBuildName(d.SelectedFaction, d.SavedBuilds)
	}

	idx := d.FindSavedBuild(d.CurrentBuildID)
	exclude := ""
	if idx >= 0 {
		exclude = d.CurrentBuildID
	}
	final := uniqueName(resolved, d.SavedBuilds, exclude)

	build := models.SavedBuild{
		Name:            final,
		CreatedAt:       s.now().UTC(),
		SelectedFaction: d.SelectedFaction,
		MainBaseState:   models.CloneBaseStates(d.MainBaseState),
		BuildingOrder:   models.CloneBuildingOrders(d.BuildingOrder),
	}
	if idx >= 0 {
		build.ID = d.CurrentBuildID
		d.SavedBuilds[idx] = build
	} else {
		build.ID = s.newID()
		d.SavedBuilds = append([]models.SavedBuild{build}, d.SavedBuilds...)
		d.CurrentBuildID = build.ID
	}
	d.CurrentBuildName = final
	d.LastSavedSnapshot = models.Snapshot(d)
	return build
}

// uniqueName returns name, or "<base> #k" with the smallest free k when
// another saved build (other than exclude) already uses it.
func uniqueName(name string, saved []models.SavedBuild, exclude string) string {
	taken := make(map[string]bool, len(saved))
	for _, b := range saved {
		if b.ID != exclude {
			taken[b.Name] = true
		}
	}
	if !taken[name] {
		return name
	}
	base := copySuffix.ReplaceAllString(name, "")
	for k := 1; ; k++ {
		candidate := fmt.Sprintf("%s #%d", base, k)
		if !taken[candidate] {
			return candidate
		}
	}
}

// LoadBuild makes the saved build id the live build. Unknown ids are ignored.
func (s *Store) LoadBuild(id string) bool {
	return s.update(func(d *models.Document) bool {
		idx := d.FindSavedBuild(id)
		if idx < 0 {
			return false
		}
		b := d.SavedBuilds[idx]
		d.SelectedFaction = b.SelectedFaction
		d.MainBaseState = completeBaseStates(b.MainBaseState)
		d.BuildingOrder = completeBuildingOrders(b.BuildingOrder, d.MainBaseState)
		d.CurrentBuildName = b.Name
		d.CurrentBuildID = b.ID
		d.LastSavedSnapshot = models.Snapshot(d)
		return true
	})
}

// completeBaseStates deep-copies states, filling any faction that is missing
// or does not fit its layout with an empty grid.
func completeBaseStates(states map[models.Faction]models.BaseState) map[models.Faction]models.BaseState {
	out := make(map[models.Faction]models.BaseState, len(models.Factions))
	for _, f := range models.Factions {
		layout := models.LayoutFor(f)
		if st, ok := states[f]; ok && st.Conforms(layout) {
			out[f] = st.Clone()
			continue
		}
		out[f] = models.InitializeBaseState(layout)
	}
	return out
}

func completeBuildingOrders(orders map[models.Faction]models.BuildingOrder, states map[models.Faction]models.BaseState) map[models.Faction]models.BuildingOrder {
	out := make(map[models.Faction]models.BuildingOrder, len(models.Factions))
	for _, f := range models.Factions {
		out[f] = models.ReconcileOrder(orders[f], states[f])
	}
	return out
}

// DeleteBuild removes a saved build. Deleting the build being edited starts
// a fresh default build. Unknown ids are ignored.
func (s *Store) DeleteBuild(id string) bool {
	return s.update(func(d *models.Document) bool {
		idx := d.FindSavedBuild(id)
		if idx < 0 {
			return false
		}
		d.SavedBuilds = append(d.SavedBuilds[:idx:idx], d.SavedBuilds[idx+1:]...)
		if d.CurrentBuildID == id {
			resetLocked(d)
		}
		return true
	})
}

// RenameBuild sets a saved build's name. Blank names and unknown ids are
// ignored.
func (s *Store) RenameBuild(id, name string) bool {
	name = strings.TrimSpace(name)
	return s.update(func(d *models.Document) bool {
		idx := d.FindSavedBuild(id)
		if idx < 0 || name == "" || d.SavedBuilds[idx].Name == name {
			return false
		}
		d.SavedBuilds[idx].Name = name
		return true
	})
}

// SetCurrentBuildName renames the live build. A blank name restores the
// default name.
func (s *Store) SetCurrentBuildName(name string) {
	s.update(func(d *models.Document) bool {
		name := strings.TrimSpace(name)
		if name == "" {
			name = models.DefaultBuildName(d.SelectedFaction, d.SavedBuilds)
		}
		if name == d.CurrentBuildName {
			return false
		}
		d.CurrentBuildName = name
		return true
	})
}

// ResetToDefault starts a fresh build on the default faction. Saved builds
// are kept.
func (s *Store) ResetToDefault() {
	s.update(func(d *models.Document) bool {
		resetLocked(d)
		return true
	})
}

func resetLocked(d *models.Document) {
	fresh := models.DefaultDocument()
	d.SelectedFaction = fresh.SelectedFaction
	d.MainBaseState = fresh.MainBaseState
	d.BuildingOrder = fresh.BuildingOrder
	d.UnitSlots = fresh.UnitSlots
	d.CurrentBuildName = models.DefaultBuildName(fresh.SelectedFaction, d.SavedBuilds)
	d.CurrentBuildID = ""
	d.LastSavedSnapshot = ""
}
