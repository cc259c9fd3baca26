package ledger

import "github.com/tablewire/restaurant-pos/internal/model"

// DefaultTaxRateBPS is the sales tax rate in basis points (13%).
// Deployments override it via TAX_RATE_BPS.
const DefaultTaxRateBPS = 1300

// Totals is the derived money view of a check. All amounts are integer
// cents so recomputation is bit-for-bit deterministic; there is no
// floating point anywhere in the money path.
//
// Split and transfer flags on the lines are informational at this layer:
// the engine never divides Owed among split participants or moves
// amounts to transfer targets. That is settlement's job.
type Totals struct {
    SubtotalCents int64 `json:"subtotal_cents"` // Σ unitPrice × qty, comped lines included
    TaxCents      int64 `json:"tax_cents"`      // subtotal × rate, on the full subtotal
    CompCents     int64 `json:"comp_cents"`     // Σ unitPrice × qty over comped lines
    OwedCents     int64 `json:"owed_cents"`     // subtotal + tax − comp
    TaxRateBPS    int64 `json:"tax_rate_bps"`   // rate used, in basis points
}

// ComputeTotals derives the totals from the check's current lines. Pure
// function: no stored state, no side effects, identical output for an
// unchanged check. Tax is rounded half-up to the nearest cent.
func ComputeTotals(check *model.Check, taxRateBPS int64) Totals {
    if taxRateBPS < 0 {
        taxRateBPS = 0
    }
    t := Totals{TaxRateBPS: taxRateBPS}
    for _, ln := range check.Lines {
        amount := int64(ln.UnitPriceCents) * int64(ln.Qty)
        t.SubtotalCents += amount
        if ln.Comp {
            t.CompCents += amount
        }
    }
    t.TaxCents = (t.SubtotalCents*taxRateBPS + 5000) / 10000
    t.OwedCents = t.SubtotalCents + t.TaxCents - t.CompCents
    return t
}
