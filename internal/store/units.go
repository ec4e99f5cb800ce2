package store

import (
	"errors"

	"github.com/tatianab/spice-planner/internal/models"
)

var (
	// ErrInvalidSlot is returned for the add slot or an index past the roster.
	ErrInvalidSlot = errors.New("store: invalid unit slot")
	// ErrOverBudget is returned when a unit would push the roster past
	// models.UnitBudgetCP.
	ErrOverBudget = errors.New("store: unit roster over budget")
	// ErrRosterFull is returned when the roster already has
	// models.MaxUnitSlotCount slots.
	ErrRosterFull = errors.New("store: unit roster full")
)

// AddUnitSlot appends an empty slot to the selected faction's roster.
func (s *Store) AddUnitSlot() error {
	var err error
	s.update(func(d *models.Document) bool {
		u := d.UnitSlots[d.SelectedFaction]
		if u.Count >= models.MaxUnitSlotCount {
			err = ErrRosterFull
			return false
		}
		u = u.Clone()
		u.Count++
		u.Units = append(u.Units, "")
		d.UnitSlots[d.SelectedFaction] = u
		return true
	})
	return err
}

// SetUnitSlot places unitID in slot index, or clears it when unitID is
// empty. The hero slot does not count against the budget.
func (s *Store) SetUnitSlot(index int, unitID string) error {
	var err error
	s.update(func(d *models.Document) bool {
		f := d.SelectedFaction
		u := d.UnitSlots[f]
		if index <= models.AddSlotIndex || index >= u.Count || index >= len(u.Units) {
			err = ErrInvalidSlot
			return false
		}
		if u.Units[index] == unitID {
			return false
		}
		next := u.Clone()
		next.Units[index] = unitID
		if index != models.HeroSlotIndex && unitID != "" && models.TotalUnitCost(next, s.costFor(f)) > models.UnitBudgetCP {
			err = ErrOverBudget
			return false
		}
		d.UnitSlots[f] = next
		return true
	})
	return err
}

// RemoveUnitSlot drops a regular slot from the selected faction's roster.
// The add and hero slots cannot be removed.
func (s *Store) RemoveUnitSlot(index int) error {
	var err error
	s.update(func(d *models.Document) bool {
		u := d.UnitSlots[d.SelectedFaction]
		if index <= models.HeroSlotIndex || index >= u.Count || index >= len(u.Units) {
			err = ErrInvalidSlot
			return false
		}
		next := models.UnitSlots{Count: u.Count - 1}
		next.Units = append(append([]string(nil), u.Units[:index]...), u.Units[index+1:]...)
		d.UnitSlots[d.SelectedFaction] = next
		return true
	})
	return err
}

// RemainingUnitBudget returns the command points left on the selected
// faction's roster.
func (s *Store) RemainingUnitBudget() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.doc.SelectedFaction
	return models.UnitBudgetCP - models.TotalUnitCost(s.doc.UnitSlots[f], s.costFor(f))
}

func (s *Store) costFor(f models.Faction) func(string) int {
	if s.unitCP == nil {
		return nil
	}
	return func(unitID string) int { return s.unitCP(f, unitID) }
}
