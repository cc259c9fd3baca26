package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/tablewire/restaurant-pos/internal/repository"
)

// MenuHandler exposes the read-only catalog slice terminals need while
// ringing in orders: item lookup and the modifier suggestions offered
// for an item. Catalog authoring is a separate system.
type MenuHandler struct {
    Menu *repository.MenuRepo
}

// NewMenuHandler constructs a MenuHandler.
func NewMenuHandler(menu *repository.MenuRepo) *MenuHandler {
    if menu == nil {
        panic("nil repository passed to NewMenuHandler")
    }
    return &MenuHandler{Menu: menu}
}

// GetItem handles GET /v1/menu-items/:id.
func (h *MenuHandler) GetItem(c echo.Context) error {
    id, ok := paramID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu item id"})
    }
    item, err := h.Menu.MenuItem(c.Request().Context(), id)
    if err != nil {
        return checkError(c, err)
    }
    return c.JSON(http.StatusOK, item)
}

// GetModifierSuggestions handles GET /v1/menu-items/:id/modifiers.
func (h *MenuHandler) GetModifierSuggestions(c echo.Context) error {
    id, ok := paramID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu item id"})
    }
    mods, err := h.Menu.ModifierSuggestions(c.Request().Context(), id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"modifiers": mods})
}
