package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/tablewire/restaurant-pos/internal/ledger"
    "github.com/tablewire/restaurant-pos/internal/model"
)

// CheckRepo persists checks and their lines in MySQL and implements
// ledger.Store. Two schema details carry the engine's concurrency
// guarantees:
//
//   - checks.open_key holds the normalized table key while the check is
//     open and NULL once closed. A unique index on it makes "at most one
//     open check per table-set" a database invariant, and turns the
//     create/create race into a duplicate-key error the loser recovers
//     from by re-fetching the winner.
//   - CompareAndSwap is an UPDATE guarded by "AND revision = ?". Zero
//     affected rows means another terminal already claimed that
//     revision; the whole transaction rolls back and nothing changes.
//
// Lines are replaced wholesale inside the same transaction, so line
// state and revision always move together.
type CheckRepo struct {
    db *sql.DB
}

// NewCheckRepo returns a CheckRepo bound to the given database.
func NewCheckRepo(db *sql.DB) *CheckRepo { return &CheckRepo{db: db} }

// LoadCheck returns the check with its covered tables and lines in
// insertion order. Returns ledger.ErrCheckNotFound when absent.
func (r *CheckRepo) LoadCheck(ctx context.Context, id uint64) (*model.Check, error) {
    return r.loadWhere(ctx, `WHERE id = ?`, id)
}

// FindOpenCheckByTableKey returns the open check for the normalized
// table-set key, or ledger.ErrCheckNotFound when none exists.
func (r *CheckRepo) FindOpenCheckByTableKey(ctx context.Context, key string) (*model.Check, error) {
    return r.loadWhere(ctx, `WHERE open_key = ?`, key)
}

func (r *CheckRepo) loadWhere(ctx context.Context, where string, arg interface{}) (*model.Check, error) {
    q := `SELECT id, table_key, status, revision, receipt_note, next_line_id, created_at, updated_at
          FROM checks ` + where + ` LIMIT 1`
    var c model.Check
    var note sql.NullString
    err := r.db.QueryRowContext(ctx, q, arg).Scan(
        &c.ID, &c.TableKey, &c.Status, &c.Revision, &note, &c.NextLineID, &c.CreatedAt, &c.UpdatedAt,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ledger.ErrCheckNotFound
        }
        return nil, err
    }
    if note.Valid {
        n := note.String
        c.ReceiptNote = &n
    }
    // Covered tables, ascending to match the normalized key.
    trows, err := r.db.QueryContext(ctx,
        `SELECT table_id FROM check_tables WHERE check_id = ? ORDER BY table_id`, c.ID)
    if err != nil {
        return nil, err
    }
    defer trows.Close()
    for trows.Next() {
        var tid uint64
        if err := trows.Scan(&tid); err != nil {
            return nil, err
        }
        c.TableIDs = append(c.TableIDs, tid)
    }
    if err := trows.Err(); err != nil {
        return nil, err
    }
    lines, err := r.loadLines(ctx, c.ID)
    if err != nil {
        return nil, err
    }
    c.Lines = lines
    return &c, nil
}

func (r *CheckRepo) loadLines(ctx context.Context, checkID uint64) ([]model.CheckLine, error) {
    const q = `SELECT line_id, seat_id, menu_item_id, name, unit_price_cents, qty,
                      modifier_ids, comp, split_mode, custom_split_note, transfer_to
               FROM check_lines WHERE check_id = ? ORDER BY position`
    rows, err := r.db.QueryContext(ctx, q, checkID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    lines := make([]model.CheckLine, 0)
    for rows.Next() {
        var ln model.CheckLine
        var mods string
        var splitNote, transferTo sql.NullString
        if err := rows.Scan(&ln.ID, &ln.SeatID, &ln.MenuItemID, &ln.Name, &ln.UnitPriceCents,
            &ln.Qty, &mods, &ln.Comp, &ln.SplitMode, &splitNote, &transferTo); err != nil {
            return nil, err
        }
        ln.CheckID = checkID
        ln.ModifierIDs = splitModifierIDs(mods)
        if splitNote.Valid {
            n := splitNote.String
            ln.CustomSplitNote = &n
        }
        if transferTo.Valid {
            t := transferTo.String
            ln.TransferTo = &t
        }
        lines = append(lines, ln)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return lines, nil
}

// CreateCheck inserts a new check at revision 0 together with its
// check_tables rows. When a concurrent terminal already opened a check
// for the same table-set, the unique open_key index rejects the insert
// and the winner's check is returned instead.
func (r *CheckRepo) CreateCheck(ctx context.Context, check *model.Check) (*model.Check, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    res, err := tx.ExecContext(ctx,
        `INSERT INTO checks (table_key, open_key, status, revision, next_line_id) VALUES (?, ?, ?, 0, ?)`,
        check.TableKey, check.TableKey, check.Status, check.NextLineID)
    if err != nil {
        if isDuplicateKey(err) {
            return r.FindOpenCheckByTableKey(ctx, check.TableKey)
        }
        return nil, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return nil, err
    }
    check.ID = uint64(id)
    if len(check.TableIDs) > 0 {
        q := `INSERT INTO check_tables (check_id, table_id) VALUES `
        args := make([]interface{}, 0, len(check.TableIDs)*2)
        for i, tid := range check.TableIDs {
            if i > 0 {
                q += ","
            }
            q += "(?, ?)"
            args = append(args, check.ID, tid)
        }
        if _, err := tx.ExecContext(ctx, q, args...); err != nil {
            return nil, err
        }
    }
    // Read the row back so DB-side timestamps are populated.
    var note sql.NullString
    if err := tx.QueryRowContext(ctx,
        `SELECT id, table_key, status, revision, receipt_note, next_line_id, created_at, updated_at
         FROM checks WHERE id = ?`, check.ID).Scan(
        &check.ID, &check.TableKey, &check.Status, &check.Revision, &note,
        &check.NextLineID, &check.CreatedAt, &check.UpdatedAt); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return check, nil
}

// CompareAndSwap writes the check's new state only if the persisted
// revision still matches expectedRevision. The guarded UPDATE plus
// wholesale line replacement run in one transaction, so two terminals
// racing from the same revision cannot both succeed.
func (r *CheckRepo) CompareAndSwap(ctx context.Context, check *model.Check, expectedRevision uint64) (*model.Check, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    // open_key drops to NULL on close so the unique index only binds
    // open checks.
    var openKey sql.NullString
    if check.Status == model.CheckOpen {
        openKey = sql.NullString{String: check.TableKey, Valid: true}
    }
    var note sql.NullString
    if check.ReceiptNote != nil {
        note = sql.NullString{String: *check.ReceiptNote, Valid: true}
    }
    res, err := tx.ExecContext(ctx,
        `UPDATE checks SET status = ?, revision = ?, receipt_note = ?, next_line_id = ?, open_key = ?
         WHERE id = ? AND revision = ?`,
        check.Status, check.Revision, note, check.NextLineID, openKey,
        check.ID, expectedRevision)
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    if n == 0 {
        // Either the check is gone or another terminal took this
        // revision first. Distinguish so callers see the right error.
        var exists uint64
        scanErr := tx.QueryRowContext(ctx, `SELECT id FROM checks WHERE id = ?`, check.ID).Scan(&exists)
        if errors.Is(scanErr, sql.ErrNoRows) {
            return nil, ledger.ErrCheckNotFound
        }
        if scanErr != nil {
            return nil, scanErr
        }
        return nil, ledger.ErrRevisionConflict
    }
    if _, err := tx.ExecContext(ctx, `DELETE FROM check_lines WHERE check_id = ?`, check.ID); err != nil {
        return nil, err
    }
    if len(check.Lines) > 0 {
        q := `INSERT INTO check_lines (check_id, line_id, position, seat_id, menu_item_id, name,
              unit_price_cents, qty, modifier_ids, comp, split_mode, custom_split_note, transfer_to) VALUES `
        args := make([]interface{}, 0, len(check.Lines)*13)
        for i, ln := range check.Lines {
            if i > 0 {
                q += ","
            }
            q += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
            var splitNote, transferTo sql.NullString
            if ln.CustomSplitNote != nil {
                splitNote = sql.NullString{String: *ln.CustomSplitNote, Valid: true}
            }
            if ln.TransferTo != nil {
                transferTo = sql.NullString{String: *ln.TransferTo, Valid: true}
            }
            args = append(args, check.ID, ln.ID, i, ln.SeatID, ln.MenuItemID, ln.Name,
                ln.UnitPriceCents, ln.Qty, joinModifierIDs(ln.ModifierIDs), ln.Comp,
                ln.SplitMode, splitNote, transferTo)
        }
        if _, err := tx.ExecContext(ctx, q, args...); err != nil {
            return nil, err
        }
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return check, nil
}

// joinModifierIDs packs the modifier set into one column. Ids never
// contain commas (catalog keys are slug-style strings).
func joinModifierIDs(ids []string) string { return strings.Join(ids, ",") }

func splitModifierIDs(s string) []string {
    if s == "" {
        return []string{}
    }
    return strings.Split(s, ",")
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
    return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
