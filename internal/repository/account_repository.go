package repository

import (
	"context"

	"github.com/noah-isme/worktime-api/internal/models"
	"github.com/noah-isme/worktime-api/pkg/kvstore"
)

// AccountStatusKey holds the mapping of role-qualified ids to Active/Inactive.
const AccountStatusKey = "account_status"

// AccountRepository persists account activation flags.
type AccountRepository struct {
	store kvstore.Store
}

// NewAccountRepository constructs the repository.
func NewAccountRepository(store kvstore.Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Load returns the status mapping, empty when never written.
func (r *AccountRepository) Load(ctx context.Context) (map[string]models.AccountStatus, error) {
	statuses := map[string]models.AccountStatus{}
	if _, err := readJSON(ctx, r.store, AccountStatusKey, &statuses); err != nil {
		return map[string]models.AccountStatus{}, err
	}
	if statuses == nil {
		statuses = map[string]models.AccountStatus{}
	}
	return statuses, nil
}

// Save replaces the status mapping.
func (r *AccountRepository) Save(ctx context.Context, statuses map[string]models.AccountStatus) error {
	return writeJSON(ctx, r.store, AccountStatusKey, statuses)
}
