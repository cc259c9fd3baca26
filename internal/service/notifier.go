package queue_publisher

import (
    "context"
    "time"

    "github.com/tablewire/restaurant-pos/internal/ledger"
    "github.com/tablewire/restaurant-pos/internal/model"
    q "github.com/tablewire/restaurant-pos/internal/queue"
)

// AMQPNotifier adapts the broker publisher to the ledger.Notifier
// interface. Fan-out is strictly advisory: publishing happens on a
// separate goroutine with its own context, and failures are logged by
// the publisher and otherwise ignored, because the mutation has already
// committed by the time the event goes out. Terminals that miss an
// event still converge by re-fetching the check.
type AMQPNotifier struct {
    TaxRateBPS int64 // rate used for the owed summary on events
}

// CheckUpdated publishes a check.updated event for the new revision.
func (n *AMQPNotifier) CheckUpdated(_ context.Context, check *model.Check) {
    totals := ledger.ComputeTotals(check, n.TaxRateBPS)
    ev := q.CheckUpdatedEvent{
        CheckID:    check.ID,
        TableKey:   check.TableKey,
        Status:     string(check.Status),
        Revision:   check.Revision,
        LineCount:  len(check.Lines),
        OwedCents:  totals.OwedCents,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    }
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        _ = PublishCheckUpdated(ctx, ev)
    }()
}
