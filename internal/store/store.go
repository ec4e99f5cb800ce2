// Package store owns the live planner document and every transition on it.
//
// All operations are synchronous. A mutation either applies completely and
// is written through to storage before the call returns, or is a no-op and
// writes nothing. Storage failures are logged and otherwise ignored; the
// in-memory document stays authoritative.
package store

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tatianab/spice-planner/internal/migrate"
	"github.com/tatianab/spice-planner/internal/models"
	"github.com/tatianab/spice-planner/internal/storage"
)

// UnitCostFunc returns the command-point cost of a unit for a faction.
type UnitCostFunc func(f models.Faction, unitID string) int

// Store is the single writer of a planner document.
type Store struct {
	mu      sync.Mutex
	doc     *models.Document
	storage storage.Storage
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
	unitCP  UnitCostFunc

	nextSub int
	subs    map[int]func(*models.Document)
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithUnitCost sets the cost lookup used to enforce the unit budget.
// Without it every unit costs nothing.
func WithUnitCost(cost UnitCostFunc) Option {
	return func(s *Store) {
		s.unitCP = cost
	}
}

// Open loads the persisted document from st, migrating it to the current
// schema. Missing, unreadable or corrupt records start a fresh document.
// A nil st keeps everything in memory.
func Open(ctx context.Context, st storage.Storage, opts ...Option) *Store {
	if st == nil {
		st = storage.NewMemory()
	}
	s := &Store{
		storage: st,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		newID:   uuid.NewString,
		subs:    map[int]func(*models.Document){},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.doc = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) *models.Document {
	data, ok, err := s.storage.Load(ctx, models.StorageKey)
	if err != nil {
		s.logger.Warn("load persisted build state", "error", err)
		return models.DefaultDocument()
	}
	if !ok {
		s.logger.Debug("no persisted build state, starting fresh")
		return models.DefaultDocument()
	}
	version, state, err := models.DecodeRawEnvelope(data)
	if err != nil {
		s.logger.Warn("decode persisted build state", "error", err)
		return models.DefaultDocument()
	}
	doc := migrate.Migrate(state, version)
	if version != models.SchemaVersion {
		s.logger.Info("migrated build state", "from", version, "to", models.SchemaVersion)
		s.write(ctx, doc)
	}
	return doc
}

// Document returns a deep copy of the live document.
func (s *Store) Document() *models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Subscribe registers fn to receive a copy of the document after every
// applied mutation. The returned func unregisters it.
func (s *Store) Subscribe(fn func(*models.Document)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// update runs fn on the live document. When fn reports a change the
// document is persisted and subscribers are notified outside the lock.
func (s *Store) update(fn func(d *models.Document) bool) bool {
	s.mu.Lock()
	if !fn(s.doc) {
		s.mu.Unlock()
		return false
	}
	s.write(context.Background(), s.doc)
	subs := make([]func(*models.Document), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	var view *models.Document
	if len(subs) > 0 {
		view = s.doc.Clone()
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(view.Clone())
	}
	return true
}

func (s *Store) write(ctx context.Context, doc *models.Document) {
	data, err := models.EncodeEnvelope(doc)
	if err != nil {
		s.logger.Warn("encode build state", "error", err)
		return
	}
	if err := s.storage.Save(ctx, models.StorageKey, data); err != nil {
		s.logger.Warn("persist build state", "error", err)
	}
}

// SetMainBaseCell places buildingID (or clears the cell when it is empty) on
// the selected faction's grid and moves the cell to the end of the building
// order when filled.
func (s *Store) SetMainBaseCell(row, group, cell int, buildingID string) {
	s.update(func(d *models.Document) bool {
		f := d.SelectedFaction
		state := d.MainBaseState[f]
		c := models.Coord{Row: row, Group: group, Cell: cell}
		if !state.Contains(c) {
			s.logger.Warn("cell outside layout", "faction", f, "cell", c.String())
			return false
		}
		state[row][group][cell] = buildingID
		order := d.BuildingOrder[f].Without(c)
		if buildingID != "" {
			order = append(order, c)
		}
		d.BuildingOrder[f] = order
		return true
	})
}

// SwitchFaction selects f. A non-empty build on the faction being left is
// saved first. The new faction starts an unsaved build with a default name.
func (s *Store) SwitchFaction(f models.Faction) {
	s.update(func(d *models.Document) bool {
		if !f.Valid() || f == d.SelectedFaction {
			return false
		}
		if !models.IsBuildEmpty(d) {
			saved := s.saveLocked(d, "")
			s.logger.Info("auto-saved build before faction switch", "id", saved.ID, "name", saved.Name)
		}
		d.SelectedFaction = f
		d.CurrentBuildID = ""
		d.CurrentBuildName = models.DefaultBuildName(f, d.SavedBuilds)
		return true
	})
}

// LoadSharedBuild replaces one faction's grid and order with a decoded share
// payload and selects that faction. Other factions are untouched. A payload
// that does not fit its faction's layout is ignored.
func (s *Store) LoadSharedBuild(b models.SharedBuild) bool {
	return s.update(func(d *models.Document) bool {
		if !b.Faction.Valid() || !b.State.Conforms(models.LayoutFor(b.Faction)) {
			s.logger.Warn("ignoring shared build that does not fit its layout", "faction", b.Faction)
			return false
		}
		state := b.State.Clone()
		d.MainBaseState[b.Faction] = state
		d.BuildingOrder[b.Faction] = models.ReconcileOrder(b.Order, state)
		d.SelectedFaction = b.Faction
		d.CurrentBuildID = ""
		d.CurrentBuildName = models.DefaultBuildName(b.Faction, d.SavedBuilds)
		return true
	})
}
