package syncer

import (
	"context"
	"time"

	"jeongsim_ledger/internal/model"
	"jeongsim_ledger/internal/reconcile"
)

// Result describes one pull.
type Result struct {
	StartedAt     time.Time         `json:"startedAt"`
	FinishedAt    time.Time         `json:"finishedAt"`
	Clients       int               `json:"clients"`
	Products      int               `json:"products"`
	Employees     int               `json:"employees"`
	OfficeUpdated bool              `json:"officeUpdated"`
	Sales         reconcile.Stats   `json:"sales"`
	Estimates     reconcile.Stats   `json:"estimates"`
	Transactions  int               `json:"transactions"`
	Linked        int               `json:"linked"`
	Changed       bool              `json:"changed"`
	Failures      map[string]string `json:"failures,omitempty"`
}

func (r Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Degraded reports whether any sheet could not be fetched.
func (r Result) Degraded() bool {
	return len(r.Failures) > 0
}

// Observer is told about every completed pull.
type Observer interface {
	SyncCompleted(ctx context.Context, result Result)
}

// RecordObserver is an Observer that also wants every locally recorded
// transaction.
type RecordObserver interface {
	TransactionRecorded(ctx context.Context, tx model.Transaction)
}

type ObserverFunc func(ctx context.Context, result Result)

func (f ObserverFunc) SyncCompleted(ctx context.Context, result Result) {
	f(ctx, result)
}
