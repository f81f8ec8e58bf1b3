package notary

import (
	"context"
	"time"
)

// Transaction statuses reported by the public network.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
)

// Transaction is the traceability record returned by the notary. The hash is
// persisted as an opaque string; nothing in the workflow depends on it.
type Transaction struct {
	TxHash      string    `json:"txHash"`
	Status      string    `json:"status"`
	BlockNumber *int64    `json:"blockNumber,omitempty"`
	GasUsed     *int64    `json:"gasUsed,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Notary records workflow outcomes on a public test network. Callers must
// treat any failure as non-fatal: log it, leave the tx-hash field unset, and
// complete the primary entity write regardless.
type Notary interface {
	RecordTransaction(ctx context.Context, payload map[string]interface{}) (*Transaction, error)
	TransactionStatus(ctx context.Context, txHash string) (*Transaction, error)
}
