package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/worktime-api/internal/models"
	"github.com/noah-isme/worktime-api/internal/repository"
	appErrors "github.com/noah-isme/worktime-api/pkg/errors"
	"github.com/noah-isme/worktime-api/pkg/kvstore"
)

func newTestAccounts() (*AccountService, *flakyStore) {
	store := &flakyStore{MemoryStore: kvstore.NewMemoryStore()}
	return NewAccountService(repository.NewAccountRepository(store), nil, zap.NewNop()), store
}

func TestAccountServiceDefaultsToActive(t *testing.T) {
	svc, _ := newTestAccounts()
	ctx := context.Background()

	assert.True(t, svc.IsActive(ctx, models.AccountRoleUser, "E1"))
	acc := svc.Get(ctx, models.AccountRoleAdmin, "A1")
	assert.Equal(t, models.AccountActive, acc.Status)
	assert.Equal(t, models.AccountRoleAdmin, acc.Role)
}

func TestAccountServiceSetAndToggle(t *testing.T) {
	svc, _ := newTestAccounts()
	ctx := context.Background()

	acc, err := svc.SetStatus(ctx, models.AccountRoleUser, "E1", models.AccountInactive)
	require.NoError(t, err)
	assert.Equal(t, models.AccountInactive, acc.Status)
	assert.False(t, svc.IsActive(ctx, models.AccountRoleUser, "E1"))
	assert.True(t, svc.IsActive(ctx, models.AccountRoleAdmin, "E1"), "roles are qualified separately")

	acc, err = svc.Toggle(ctx, models.AccountRoleUser, "E1")
	require.NoError(t, err)
	assert.Equal(t, models.AccountActive, acc.Status)
	assert.True(t, svc.IsActive(ctx, models.AccountRoleUser, "E1"))
}

func TestAccountServiceRejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestAccounts()

	_, err := svc.SetStatus(context.Background(), models.AccountRoleUser, "E1", "Suspended")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = svc.SetStatus(context.Background(), models.AccountRoleUser, "", models.AccountActive)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAccountServiceStorageFailures(t *testing.T) {
	svc, store := newTestAccounts()
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, models.AccountRoleUser, "E1", models.AccountInactive)
	require.NoError(t, err)

	store.failGet = true
	assert.True(t, svc.IsActive(ctx, models.AccountRoleUser, "E1"), "unreadable status counts as active")
	_, err = svc.SetStatus(ctx, models.AccountRoleUser, "E2", models.AccountInactive)
	assert.True(t, errors.Is(err, appErrors.ErrStorage))

	store.failGet = false
	store.failSet = true
	_, err = svc.Toggle(ctx, models.AccountRoleUser, "E1")
	assert.True(t, errors.Is(err, appErrors.ErrStorage))
	assert.False(t, svc.IsActive(ctx, models.AccountRoleUser, "E1"))
}

func TestAccountServiceMalformedStatusIsOverwritten(t *testing.T) {
	svc, store := newTestAccounts()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, repository.AccountStatusKey, []byte("oops")))

	assert.True(t, svc.IsActive(ctx, models.AccountRoleUser, "E1"))
	_, err := svc.SetStatus(ctx, models.AccountRoleUser, "E1", models.AccountInactive)
	require.NoError(t, err)
	assert.False(t, svc.IsActive(ctx, models.AccountRoleUser, "E1"))
}
