package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/tablewire/restaurant-pos/internal/ledger"
    "github.com/tablewire/restaurant-pos/internal/repository"
)

// TableHandler serves the floor plan and the table-level operations that
// sit outside any single check: seat resolution for a selection, the
// kitchen's served signal, and the manager reset that returns a settled
// table to service.
type TableHandler struct {
    Tables *repository.TableRepo
    Ledger *ledger.Ledger
}

// NewTableHandler constructs a TableHandler. Both dependencies must be
// non-nil.
func NewTableHandler(tables *repository.TableRepo, l *ledger.Ledger) *TableHandler {
    if tables == nil || l == nil {
        panic("nil dependency passed to NewTableHandler")
    }
    return &TableHandler{Tables: tables, Ledger: l}
}

// List handles GET /v1/tables. Returns every registered unit with its
// current status so terminals can render the floor plan.
func (h *TableHandler) List(c echo.Context) error {
    units, err := h.Tables.ListAll(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"tables": units})
}

// ResolveSeats handles POST /v1/tables/resolve-seats.
// Body: {"table_ids":[...]}. Expands the selection into addressable
// seat slots; a selection containing a non-combinable unit alongside
// others is rejected with merge_rejected.
func (h *TableHandler) ResolveSeats(c echo.Context) error {
    var body struct {
        TableIDs []uint64 `json:"table_ids"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    slots, err := ledger.ResolveSeats(c.Request().Context(), h.Tables, body.TableIDs)
    if err != nil {
        return checkError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"seats": slots})
}

// MarkServed handles POST /v1/tables/:id/served. The kitchen display
// calls this once an order has been fired; a table already served or
// paying is rejected.
func (h *TableHandler) MarkServed(c echo.Context) error {
    id, ok := paramID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
    }
    if err := h.Ledger.MarkServed(c.Request().Context(), id); err != nil {
        return checkError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"status": "SERVED"})
}

// Reset handles POST /v1/tables/:id/reset. Returns a table from PAYING
// back to OPEN once its check has been fully settled and cleared.
func (h *TableHandler) Reset(c echo.Context) error {
    id, ok := paramID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
    }
    if err := h.Ledger.ResetTable(c.Request().Context(), id); err != nil {
        return checkError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"status": "OPEN"})
}
