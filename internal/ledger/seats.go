package ledger

import (
    "context"

    "github.com/tablewire/restaurant-pos/internal/model"
)

// validateSelection normalizes a table selection and checks it against
// the topology. A multi-table selection is valid only when every unit in
// it is combinable; a single unit is always valid on its own. The
// returned units are in ascending id order.
func validateSelection(ctx context.Context, topo Topology, tableIDs []uint64) ([]model.TableUnit, error) {
    norm := model.NormalizeTableIDs(tableIDs)
    if len(norm) == 0 {
        return nil, ErrEmptySelection
    }
    units, err := topo.TablesByIDs(ctx, norm)
    if err != nil {
        return nil, err
    }
    if len(units) > 1 {
        for _, u := range units {
            if !u.Combinable {
                return nil, ErrMergeRejected
            }
        }
    }
    return units, nil
}

// ResolveSeats expands a table selection into addressable seat slots.
// Ordering is deterministic: tables ascending by id, then seat index
// within each table. No side effects; slots are derived, never stored.
func ResolveSeats(ctx context.Context, topo Topology, tableIDs []uint64) ([]model.SeatSlot, error) {
    units, err := validateSelection(ctx, topo, tableIDs)
    if err != nil {
        return nil, err
    }
    var slots []model.SeatSlot
    for _, u := range units {
        for i := uint32(1); i <= u.SeatCount; i++ {
            slots = append(slots, model.NewSeatSlot(u, i))
        }
    }
    return slots, nil
}
