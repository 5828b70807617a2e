package repository

import (
	"context"

	"github.com/noah-isme/worktime-api/internal/models"
	"github.com/noah-isme/worktime-api/pkg/kvstore"
)

// LedgerKey is the shared store key holding the administrator-visible ledger.
const LedgerKey = "attendance_ledger"

// Ledger maps "{employeeId}:{dateISO}" to the entry for that day.
type Ledger map[string]models.LedgerEntry

// LedgerRepository reads and writes the whole ledger mapping.
type LedgerRepository struct {
	store kvstore.Store
}

// NewLedgerRepository constructs the repository.
func NewLedgerRepository(store kvstore.Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// Load returns the ledger, or an empty one when it has never been written.
func (r *LedgerRepository) Load(ctx context.Context) (Ledger, error) {
	ledger := Ledger{}
	if _, err := readJSON(ctx, r.store, LedgerKey, &ledger); err != nil {
		return Ledger{}, err
	}
	if ledger == nil {
		ledger = Ledger{}
	}
	return ledger, nil
}

// Save replaces the ledger.
func (r *LedgerRepository) Save(ctx context.Context, ledger Ledger) error {
	return writeJSON(ctx, r.store, LedgerKey, ledger)
}

// Subscribe registers fn for ledger rewrites from any writer sharing the store.
func (r *LedgerRepository) Subscribe(fn kvstore.Listener) func() {
	return r.store.Subscribe(LedgerKey, fn)
}
