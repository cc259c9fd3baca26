package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/tablewire/restaurant-pos/internal/ledger"
    "github.com/tablewire/restaurant-pos/internal/model"
)

// MenuRepo is the read-only view of the menu catalog the check engine
// consumes. Catalog authoring happens in a separate system against the
// same database; this repo only looks items and modifiers up. It
// implements ledger.Catalog.
type MenuRepo struct {
    db *sql.DB
}

// NewMenuRepo returns a MenuRepo bound to the given database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

// MenuItem returns the active item with the given id. Inactive or
// missing items both come back as ledger.ErrUnknownMenuItem so a
// deactivated item cannot be rung in.
func (r *MenuRepo) MenuItem(ctx context.Context, id uint64) (model.MenuItem, error) {
    const q = `SELECT id, name, price_cents, is_active, created_at, updated_at
               FROM menu_items WHERE id = ? LIMIT 1`
    var m model.MenuItem
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &m.ID, &m.Name, &m.PriceCents, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return model.MenuItem{}, ledger.ErrUnknownMenuItem
        }
        return model.MenuItem{}, err
    }
    if !m.IsActive {
        return model.MenuItem{}, ledger.ErrUnknownMenuItem
    }
    return m, nil
}

// Modifier returns the modifier suggestion with the given id, or
// ledger.ErrUnknownModifier.
func (r *MenuRepo) Modifier(ctx context.Context, id string) (model.ModifierSuggestion, error) {
    const q = `SELECT id, menu_item_id, label, default_applied
               FROM modifier_suggestions WHERE id = ? LIMIT 1`
    var m model.ModifierSuggestion
    err := r.db.QueryRowContext(ctx, q, id).Scan(&m.ID, &m.MenuItemID, &m.Label, &m.DefaultApplied)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return model.ModifierSuggestion{}, ledger.ErrUnknownModifier
        }
        return model.ModifierSuggestion{}, err
    }
    return m, nil
}

// ModifierSuggestions lists the modifiers offered for a menu item,
// ordered by id for stable terminal rendering.
func (r *MenuRepo) ModifierSuggestions(ctx context.Context, menuItemID uint64) ([]model.ModifierSuggestion, error) {
    const q = `SELECT id, menu_item_id, label, default_applied
               FROM modifier_suggestions WHERE menu_item_id = ? ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q, menuItemID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.ModifierSuggestion, 0)
    for rows.Next() {
        var m model.ModifierSuggestion
        if err := rows.Scan(&m.ID, &m.MenuItemID, &m.Label, &m.DefaultApplied); err != nil {
            return nil, err
        }
        out = append(out, m)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
