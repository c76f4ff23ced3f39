package app

import (
	"time"

	"github.com/google/uuid"
)

// Operation tracks a CLI invocation that may mutate the database.
// Operations are created in memory; only DB-mutating commands persist them.
type Operation struct {
	ID         string // UUID
	Operation  string
	Parameters string
	Status     string // "success" or "error"
	StartedAt  time.Time

	persisted bool
}

// NewOperation creates a new in-memory operation record.
func NewOperation(operation, parameters string) *Operation {
	return &Operation{
		ID:         uuid.New().String(),
		Operation:  operation,
		Parameters: parameters,
		Status:     "success",
		StartedAt:  time.Now(),
	}
}

// Persisted returns true if this operation has been saved to the database.
func (op *Operation) Persisted() bool { return op.persisted }

// MarkPersisted records that the operation row exists in the database.
func (op *Operation) MarkPersisted() { op.persisted = true }
