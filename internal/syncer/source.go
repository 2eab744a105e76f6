package syncer

import (
	"context"
	"errors"

	"jeongsim_ledger/internal/model"
	"jeongsim_ledger/internal/rows"
)

// ErrNoSource is returned when no remote spreadsheet is configured.
var ErrNoSource = errors.New("no remote source configured")

// RowSource delivers the data rows of a named sheet, header excluded.
type RowSource interface {
	FetchRows(ctx context.Context, sheet string) ([]rows.RawRow, error)
}

// TransactionWriter appends a transaction to the remote spreadsheet.
type TransactionWriter interface {
	AppendTransaction(ctx context.Context, tx model.Transaction) error
}

// Remote is a spreadsheet backend the ledger can pull from and append to.
type Remote interface {
	RowSource
	TransactionWriter
	TestConnection(ctx context.Context) error
}

// Resolver picks the remote for the current company settings. It returns
// ErrNoSource when none is configured.
type Resolver func(ctx context.Context, info model.CompanyInfo) (Remote, error)

// Static always resolves to remote.
func Static(remote Remote) Resolver {
	return func(context.Context, model.CompanyInfo) (Remote, error) {
		if remote == nil {
			return nil, ErrNoSource
		}
		return remote, nil
	}
}

// Store is the part of the persistence gateway the syncer needs.
type Store interface {
	GetCompanyInfo(ctx context.Context) (model.CompanyInfo, error)
	SaveCompanyInfo(ctx context.Context, info model.CompanyInfo) error
	GetClients(ctx context.Context) ([]model.Client, error)
	SaveClients(ctx context.Context, clients []model.Client) error
	SaveProducts(ctx context.Context, products []model.ProductItem) error
	SaveEmployees(ctx context.Context, employees []model.Employee) error
	GetTransactions(ctx context.Context) ([]model.Transaction, error)
	SaveTransactions(ctx context.Context, txs []model.Transaction) error
	SaveTransaction(ctx context.Context, tx model.Transaction) error
}
