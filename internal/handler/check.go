package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/tablewire/restaurant-pos/internal/ledger"
    "github.com/tablewire/restaurant-pos/internal/model"
)

// CheckHandler exposes the check engine to terminals: open-or-get by
// table selection, one endpoint per line mutation, close, and a read
// that includes computed totals. Every mutating endpoint requires the
// expected_revision the terminal last observed; a stale value comes
// back as 409 and the terminal must re-fetch before resubmitting.
type CheckHandler struct {
    Ledger     *ledger.Ledger
    TaxRateBPS int64
}

// NewCheckHandler constructs a CheckHandler. The ledger must be non-nil.
func NewCheckHandler(l *ledger.Ledger, taxRateBPS int64) *CheckHandler {
    if l == nil {
        panic("nil ledger passed to NewCheckHandler")
    }
    return &CheckHandler{Ledger: l, TaxRateBPS: taxRateBPS}
}

// checkResp is the wire shape for a check plus its derived totals.
type checkResp struct {
    Check  *model.Check  `json:"check"`
    Totals ledger.Totals `json:"totals"`
}

func (h *CheckHandler) respond(c echo.Context, status int, check *model.Check) error {
    return c.JSON(status, checkResp{Check: check, Totals: ledger.ComputeTotals(check, h.TaxRateBPS)})
}

// Open handles POST /v1/checks/open. Body: {"table_ids":[...]}. Returns
// the open check for the selection, creating one when none exists.
func (h *CheckHandler) Open(c echo.Context) error {
    var body struct {
        TableIDs []uint64 `json:"table_ids"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    check, err := h.Ledger.OpenOrGet(c.Request().Context(), body.TableIDs)
    if err != nil {
        return checkError(c, err)
    }
    return h.respond(c, http.StatusOK, check)
}

// Get handles GET /v1/checks/:id. Totals are recomputed on every read;
// they are never stored.
func (h *CheckHandler) Get(c echo.Context) error {
    id, ok := paramID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check id"})
    }
    check, err := h.Ledger.Load(c.Request().Context(), id)
    if err != nil {
        return checkError(c, err)
    }
    return h.respond(c, http.StatusOK, check)
}

// AddLine handles POST /v1/checks/:id/lines.
// Body: {"expected_revision":N,"seat_id":"3-1","menu_item_id":7,"qty":1}.
// Each call appends a distinct line; qty defaults to 1.
func (h *CheckHandler) AddLine(c echo.Context) error {
    id, ok := paramID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check id"})
    }
    var body struct {
        ExpectedRevision uint64 `json:"expected_revision"`
        SeatID           string `json:"seat_id"`
        MenuItemID       uint64 `json:"menu_item_id"`
        Qty              uint32 `json:"qty"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.MenuItemID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "menu_item_id is required"})
    }
    check, err := h.Ledger.AddLine(c.Request().Context(), id, body.ExpectedRevision, body.SeatID, body.MenuItemID, body.Qty)
    if err != nil {
        return checkError(c, err)
    }
    return h.respond(c, http.StatusCreated, check)
}

// SetQty handles PUT /v1/checks/:id/lines/:lineID/qty.
// Body: {"expected_revision":N,"qty":3}. Zero or negative removes the line.
func (h *CheckHandler) SetQty(c echo.Context) error {
    id, lineID, ok := lineParams(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check or line id"})
    }
    var body struct {
        ExpectedRevision uint64 `json:"expected_revision"`
        Qty              int64  `json:"qty"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    check, err := h.Ledger.SetQty(c.Request().Context(), id, body.ExpectedRevision, lineID, body.Qty)
    if err != nil {
        return checkError(c, err)
    }
    return h.respond(c, http.StatusOK, check)
}

// ToggleComp handles POST /v1/checks/:id/lines/:lineID/comp.
func (h *CheckHandler) ToggleComp(c echo.Context) error {
    id, lineID, ok := lineParams(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check or line id"})
    }
    var body struct {
        ExpectedRevision uint64 `json:"expected_revision"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    check, err := h.Ledger.ToggleComp(c.Request().Context(), id, body.ExpectedRevision, lineID)
    if err != nil {
        return checkError(c, err)
    }
    return h.respond(c, http.StatusOK, check)
}

// SetSplitMode handles PUT /v1/checks/:id/lines/:lineID/split.
// Body: {"expected_revision":N,"mode":"EVEN"}. Requesting the current
// mode resets the line to NONE.
func (h *CheckHandler) SetSplitMode(c echo.Context) error {
    id, lineID, ok := lineParams(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check or line id"})
    }
    var body struct {
        ExpectedRevision uint64 `json:"expected_revision"`
        Mode             string `json:"mode"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    check, err := h.Ledger.SetSplitMode(c.Request().Context(), id, body.ExpectedRevision, lineID, model.SplitMode(body.Mode))
    if err != nil {
        return checkError(c, err)
    }
    return h.respond(c, http.StatusOK, check)
}

// SetSplitNote handles PUT /v1/checks/:id/lines/:lineID/split-note.
// Blank note unsets it.
func (h *CheckHandler) SetSplitNote(c echo.Context) error {
    id, lineID, ok := lineParams(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check or line id"})
    }
    var body struct {
        ExpectedRevision uint64 `json:"expected_revision"`
        Note             string `json:"note"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    check, err := h.Ledger.SetCustomSplitNote(c.Request().Context(), id, body.ExpectedRevision, lineID, body.Note)
    if err != nil {
        return checkError(c, err)
    }
    return h.respond(c, http.StatusOK, check)
}

// SetTransfer handles PUT /v1/checks/:id/lines/:lineID/transfer.
// Blank target clears the transfer marker.
func (h *CheckHandler) SetTransfer(c echo.Context) error {
    id, lineID, ok := lineParams(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check or line id"})
    }
    var body struct {
        ExpectedRevision uint64 `json:"expected_revision"`
        Target           string `json:"target"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    check, err := h.Ledger.SetTransferTarget(c.Request().Context(), id, body.ExpectedRevision, lineID, body.Target)
    if err != nil {
        return checkError(c, err)
    }
    return h.respond(c, http.StatusOK, check)
}

// ToggleModifier handles POST /v1/checks/:id/lines/:lineID/modifiers.
// Body: {"expected_revision":N,"modifier_id":"no-onion"}.
func (h *CheckHandler) ToggleModifier(c echo.Context) error {
    id, lineID, ok := lineParams(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check or line id"})
    }
    var body struct {
        ExpectedRevision uint64 `json:"expected_revision"`
        ModifierID       string `json:"modifier_id"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.ModifierID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "modifier_id is required"})
    }
    check, err := h.Ledger.ToggleModifier(c.Request().Context(), id, body.ExpectedRevision, lineID, body.ModifierID)
    if err != nil {
        return checkError(c, err)
    }
    return h.respond(c, http.StatusOK, check)
}

// ClearLines handles POST /v1/checks/:id/clear-lines.
func (h *CheckHandler) ClearLines(c echo.Context) error {
    id, ok := paramID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check id"})
    }
    var body struct {
        ExpectedRevision uint64 `json:"expected_revision"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    check, err := h.Ledger.ClearAllLines(c.Request().Context(), id, body.ExpectedRevision)
    if err != nil {
        return checkError(c, err)
    }
    return h.respond(c, http.StatusOK, check)
}

// SetNote handles PUT /v1/checks/:id/note.
func (h *CheckHandler) SetNote(c echo.Context) error {
    id, ok := paramID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check id"})
    }
    var body struct {
        ExpectedRevision uint64 `json:"expected_revision"`
        Note             string `json:"note"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    check, err := h.Ledger.SetReceiptNote(c.Request().Context(), id, body.ExpectedRevision, body.Note)
    if err != nil {
        return checkError(c, err)
    }
    return h.respond(c, http.StatusOK, check)
}

// Close handles POST /v1/checks/:id/close. Subject to the same revision
// gate as line mutations; afterwards the check is read-only.
func (h *CheckHandler) Close(c echo.Context) error {
    id, ok := paramID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check id"})
    }
    var body struct {
        ExpectedRevision uint64 `json:"expected_revision"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    check, err := h.Ledger.Close(c.Request().Context(), id, body.ExpectedRevision)
    if err != nil {
        return checkError(c, err)
    }
    return h.respond(c, http.StatusOK, check)
}

// checkError maps engine errors onto HTTP statuses. Conflicts are 409 so
// terminals re-fetch and resubmit; referential failures are 400/404.
func checkError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, ledger.ErrRevisionConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "revision_conflict"})
    case errors.Is(err, ledger.ErrCheckClosed):
        return c.JSON(http.StatusConflict, echo.Map{"error": "check_closed"})
    case errors.Is(err, ledger.ErrCheckNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "check not found"})
    case errors.Is(err, ledger.ErrLineNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "line not found"})
    case errors.Is(err, ledger.ErrTableNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
    case errors.Is(err, ledger.ErrMergeRejected):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "merge_rejected"})
    case errors.Is(err, ledger.ErrEmptySelection):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_ids is required"})
    case errors.Is(err, ledger.ErrUnknownMenuItem):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown menu item"})
    case errors.Is(err, ledger.ErrUnknownModifier):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown modifier"})
    case errors.Is(err, ledger.ErrInvalidSplitMode):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid split mode"})
    case errors.Is(err, ledger.ErrInvalidQuantity):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quantity"})
    case errors.Is(err, ledger.ErrInvalidTransition):
        return c.JSON(http.StatusConflict, echo.Map{"error": "invalid table status transition"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
}

func paramID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

func lineParams(c echo.Context) (checkID, lineID uint64, ok bool) {
    checkID, ok = paramID(c, "id")
    if !ok {
        return 0, 0, false
    }
    lineID, ok = paramID(c, "lineID")
    if !ok {
        return 0, 0, false
    }
    return checkID, lineID, true
}
