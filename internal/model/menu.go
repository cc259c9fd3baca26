package model

import "time"

// MenuItem is the slice of the menu catalog the check engine consumes:
// enough to stamp a name and price onto a new check line.  Catalog
// authoring lives in a separate system; this side is read-only.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – display name.
//  PriceCents – unit price in cents.
//  IsActive   – inactive items cannot be added to checks.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type MenuItem struct {
    ID         uint64    `json:"id"`
    Name       string    `json:"name"`
    PriceCents uint32    `json:"price_cents"`
    IsActive   bool      `json:"is_active"`
    CreatedAt  time.Time `json:"created_at"`
    UpdatedAt  time.Time `json:"updated_at"`
}

// ModifierSuggestion is static reference data owned by the menu catalog:
// a modifier that terminals offer when an item is added.  The check
// engine only validates that a toggled modifier id is known.
//
// Fields:
//  ID             – modifier identifier (string key, e.g. "no-onion").
//  MenuItemID     – item this modifier is suggested for.
//  Label          – display label.
//  DefaultApplied – whether terminals pre-select it.
type ModifierSuggestion struct {
    ID             string `json:"id"`
    MenuItemID     uint64 `json:"menu_item_id"`
    Label          string `json:"label"`
    DefaultApplied bool   `json:"default_applied"`
}
