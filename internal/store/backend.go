// Package store persists the locally cached ledger: clients, products,
// employees, transactions and the office record.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document or record does not exist.
var ErrNotFound = errors.New("not found")

// Backend stores whole JSON documents by key. Each collection is one
// document and is always replaced wholesale.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, body []byte) error
	Close() error
}
