package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/tablewire/restaurant-pos/internal/ledger"
    "github.com/tablewire/restaurant-pos/internal/model"
)

// TableRepo reads the registered floor plan and applies table status
// transitions. It implements ledger.Topology. Table identity (label,
// seat count, zone, combinable) is registered once and treated as
// read-only here; only status moves, and only through the guarded
// SetStatus update.
type TableRepo struct {
    db *sql.DB
}

// NewTableRepo returns a TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableColumns = `id, label, seat_count, zone, combinable, status, created_at, updated_at`

// ListAll returns every registered table unit ordered by id. Used by
// terminals to render the floor plan.
func (r *TableRepo) ListAll(ctx context.Context) ([]model.TableUnit, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+tableColumns+` FROM table_units ORDER BY id`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanTables(rows)
}

// TablesByIDs returns the units for the given ids in ascending id
// order. Returns ledger.ErrTableNotFound when any id is unregistered.
func (r *TableRepo) TablesByIDs(ctx context.Context, ids []uint64) ([]model.TableUnit, error) {
    if len(ids) == 0 {
        return []model.TableUnit{}, nil
    }
    placeholders := make([]string, len(ids))
    args := make([]interface{}, len(ids))
    for i, id := range ids {
        placeholders[i] = "?"
        args[i] = id
    }
    q := `SELECT ` + tableColumns + ` FROM table_units WHERE id IN (` +
        strings.Join(placeholders, ",") + `) ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    units, err := scanTables(rows)
    if err != nil {
        return nil, err
    }
    if len(units) != len(ids) {
        return nil, ledger.ErrTableNotFound
    }
    return units, nil
}

// SetStatus moves one table to a new service-cycle status. The from
// status in the WHERE clause guards against a concurrent transition:
// zero affected rows means the table is no longer where the caller
// thought, reported as ledger.ErrInvalidTransition.
func (r *TableRepo) SetStatus(ctx context.Context, tableID uint64, from, to model.TableStatus) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE table_units SET status = ? WHERE id = ? AND status = ?`,
        to, tableID, from)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ledger.ErrInvalidTransition
    }
    return nil
}

func scanTables(rows *sql.Rows) ([]model.TableUnit, error) {
    units := make([]model.TableUnit, 0)
    for rows.Next() {
        var u model.TableUnit
        if err := rows.Scan(&u.ID, &u.Label, &u.SeatCount, &u.Zone, &u.Combinable,
            &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
            return nil, err
        }
        units = append(units, u)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return units, nil
}
