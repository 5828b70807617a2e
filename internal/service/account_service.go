package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/worktime-api/internal/models"
	"github.com/noah-isme/worktime-api/internal/repository"
	appErrors "github.com/noah-isme/worktime-api/pkg/errors"
)

type accountRepository interface {
	Load(ctx context.Context) (map[string]models.AccountStatus, error)
	Save(ctx context.Context, statuses map[string]models.AccountStatus) error
}

// AccountService reads and writes account activation flags. An id with no
// stored flag is Active.
type AccountService struct {
	repo    accountRepository
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAccountService constructs the account service.
func NewAccountService(repo accountRepository, metrics *MetricsService, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{repo: repo, metrics: metrics, logger: logger}
}

// IsActive gates employee clock actions. Unreadable status data counts as Active.
func (s *AccountService) IsActive(ctx context.Context, role models.AccountRole, id string) bool {
	return s.Get(ctx, role, id).Status != models.AccountInactive
}

// Get returns the account's status.
func (s *AccountService) Get(ctx context.Context, role models.AccountRole, id string) models.Account {
	statuses, err := s.repo.Load(ctx)
	if err != nil {
		s.metrics.RecordStorageFailure("account_read")
		s.logger.Warn("account status read failed", zap.Error(err))
	}
	status, ok := statuses[models.AccountKey(role, id)]
	if !ok || !status.Valid() {
		status = models.AccountActive
	}
	return models.Account{Role: role, ID: id, Status: status}
}

// SetStatus stores status for the account.
func (s *AccountService) SetStatus(ctx context.Context, role models.AccountRole, id string, status models.AccountStatus) (models.Account, error) {
	if id == "" {
		return models.Account{}, appErrors.Clone(appErrors.ErrValidation, "account id is required")
	}
	if !status.Valid() {
		return models.Account{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported account status %q", status))
	}

	statuses, err := s.repo.Load(ctx)
	if errors.Is(err, repository.ErrMalformed) {
		s.logger.Warn("account status malformed, starting from empty", zap.Error(err))
		statuses, err = map[string]models.AccountStatus{}, nil
	}
	if err != nil {
		s.metrics.RecordStorageFailure("account_read")
		return models.Account{}, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to read account status")
	}
	statuses[models.AccountKey(role, id)] = status
	if err := s.repo.Save(ctx, statuses); err != nil {
		s.metrics.RecordStorageFailure("account_write")
		return models.Account{}, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store account status")
	}

	s.logger.Info("account status changed",
		zap.String("role", string(role)),
		zap.String("account_id", id),
		zap.String("status", string(status)),
	)
	return models.Account{Role: role, ID: id, Status: status}, nil
}

// Toggle flips the account between Active and Inactive.
func (s *AccountService) Toggle(ctx context.Context, role models.AccountRole, id string) (models.Account, error) {
	current := s.Get(ctx, role, id)
	return s.SetStatus(ctx, role, id, current.Status.Toggle())
}
