package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/tablewire/restaurant-pos/internal/model"
)

// In-memory fakes for the engine's dependency interfaces. memStore holds
// its mutex across the whole read-compare-write of CompareAndSwap, which
// matches the atomicity the SQL implementation gets from a guarded
// UPDATE, so the concurrency tests exercise the real protocol.

type memStore struct {
	mu     sync.Mutex
	nextID uint64
	checks map[uint64]*model.Check
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, checks: map[uint64]*model.Check{}}
}

func (s *memStore) LoadCheck(ctx context.Context, id uint64) (*model.Check, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.checks[id]
	if !ok {
		return nil, ErrCheckNotFound
	}
	return c.Clone(), nil
}

func (s *memStore) FindOpenCheckByTableKey(ctx context.Context, key string) (*model.Check, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.checks {
		if c.TableKey == key && c.Status == model.CheckOpen {
			return c.Clone(), nil
		}
	}
	return nil, ErrCheckNotFound
}

func (s *memStore) CreateCheck(ctx context.Context, check *model.Check) (*model.Check, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Losing a create/create race returns the winner, same as the
	// duplicate-key path in the SQL store.
	for _, c := range s.checks {
		if c.TableKey == check.TableKey && c.Status == model.CheckOpen {
			return c.Clone(), nil
		}
	}
	cp := check.Clone()
	cp.ID = s.nextID
	s.nextID++
	s.checks[cp.ID] = cp
	return cp.Clone(), nil
}

func (s *memStore) CompareAndSwap(ctx context.Context, check *model.Check, expectedRevision uint64) (*model.Check, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.checks[check.ID]
	if !ok {
		return nil, ErrCheckNotFound
	}
	if cur.Revision != expectedRevision {
		return nil, ErrRevisionConflict
	}
	s.checks[check.ID] = check.Clone()
	return check.Clone(), nil
}

type memTopology struct {
	mu     sync.Mutex
	tables map[uint64]*model.TableUnit
}

func newMemTopology(units ...model.TableUnit) *memTopology {
	t := &memTopology{tables: map[uint64]*model.TableUnit{}}
	for _, u := range units {
		cp := u
		if cp.Status == "" {
			cp.Status = model.TableOpen
		}
		t.tables[cp.ID] = &cp
	}
	return t
}

func (t *memTopology) TablesByIDs(ctx context.Context, ids []uint64) ([]model.TableUnit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.TableUnit, 0, len(ids))
	for _, id := range ids {
		u, ok := t.tables[id]
		if !ok {
			return nil, ErrTableNotFound
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTopology) SetStatus(ctx context.Context, tableID uint64, from, to model.TableStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	u, ok := t.tables[tableID]
	if !ok || u.Status != from {
		return ErrInvalidTransition
	}
	u.Status = to
	return nil
}

func (t *memTopology) status(id uint64) model.TableStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tables[id].Status
}

type memCatalog struct {
	items map[uint64]model.MenuItem
	mods  map[string]model.ModifierSuggestion
}

func newMemCatalog(items []model.MenuItem, mods []model.ModifierSuggestion) *memCatalog {
	c := &memCatalog{
		items: map[uint64]model.MenuItem{},
		mods:  map[string]model.ModifierSuggestion{},
	}
	for _, it := range items {
		c.items[it.ID] = it
	}
	for _, m := range mods {
		c.mods[m.ID] = m
	}
	return c
}

func (c *memCatalog) MenuItem(ctx context.Context, id uint64) (model.MenuItem, error) {
	it, ok := c.items[id]
	if !ok || !it.IsActive {
		return model.MenuItem{}, ErrUnknownMenuItem
	}
	return it, nil
}

func (c *memCatalog) Modifier(ctx context.Context, id string) (model.ModifierSuggestion, error) {
	m, ok := c.mods[id]
	if !ok {
		return model.ModifierSuggestion{}, ErrUnknownModifier
	}
	return m, nil
}

func (c *memCatalog) ModifierSuggestions(ctx context.Context, menuItemID uint64) ([]model.ModifierSuggestion, error) {
	var out []model.ModifierSuggestion
	for _, m := range c.mods {
		if m.MenuItemID == menuItemID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memNotifier struct {
	mu    sync.Mutex
	count int
}

func (n *memNotifier) CheckUpdated(ctx context.Context, check *model.Check) {
	n.mu.Lock()
	n.count++
	n.mu.Unlock()
}

func (n *memNotifier) calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

// testFixture builds an engine over a small floor plan and menu:
// combinable dining tables 1, 2 and 4, a non-combinable bar seat 3,
// a burger at $18.00, a salad at $12.00 and a discontinued special.
func testFixture() (*Ledger, *memStore, *memTopology, *memNotifier) {
	topo := newMemTopology(
		model.TableUnit{ID: 1, Label: "T1", SeatCount: 4, Zone: model.ZoneDining, Combinable: true},
		model.TableUnit{ID: 2, Label: "T2", SeatCount: 2, Zone: model.ZoneDining, Combinable: true},
		model.TableUnit{ID: 3, Label: "Bar 1", SeatCount: 1, Zone: model.ZoneBar, Combinable: false},
		model.TableUnit{ID: 4, Label: "T4", SeatCount: 6, Zone: model.ZoneDining, Combinable: true},
	)
	catalog := newMemCatalog(
		[]model.MenuItem{
			{ID: 10, Name: "Burger", PriceCents: 1800, IsActive: true},
			{ID: 11, Name: "Salad", PriceCents: 1200, IsActive: true},
			{ID: 12, Name: "Old Special", PriceCents: 2500, IsActive: false},
		},
		[]model.ModifierSuggestion{
			{ID: "no-onion", MenuItemID: 10, Label: "No onion"},
			{ID: "extra-cheese", MenuItemID: 10, Label: "Extra cheese"},
			{ID: "dressing-side", MenuItemID: 11, Label: "Dressing on the side"},
		},
	)
	store := newMemStore()
	notif := &memNotifier{}
	return New(store, topo, catalog, notif), store, topo, notif
}
