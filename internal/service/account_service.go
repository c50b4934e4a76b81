package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/dto"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
)

type accountRepository interface {
	List(ctx context.Context, filter models.AccountFilter) ([]models.Account, int, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AccountService handles account administration.
type AccountService struct {
	repo      accountRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAccountService creates an instance of AccountService.
func NewAccountService(repo accountRepository, validate *validator.Validate, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AccountService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated accounts and pagination metadata.
func (s *AccountService) List(ctx context.Context, filter models.AccountFilter) ([]models.Account, *models.Pagination, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown role filter")
	}
	accounts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list accounts")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return accounts, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns an account by ID.
func (s *AccountService) Get(ctx context.Context, id string) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "account not found", "failed to load account")
	}
	return account, nil
}

// Create adds a new account with a bcrypt-hashed password.
func (s *AccountService) Create(ctx context.Context, req dto.CreateAccountRequest, meta models.RequestMeta) (*models.Account, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Role = models.UserRole(strings.ToUpper(string(req.Role)))
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid create account payload")
	}

	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, internalError(err, "failed to check email uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already exists")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, internalError(err, "failed to hash password")
	}

	account := &models.Account{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         req.Role,
		Active:       true,
	}
	if req.Role == models.RoleStudent {
		account.StudentCode = req.StudentCode
		account.Major = req.Major
		account.YearLevel = req.YearLevel
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, internalError(err, "failed to create account")
	}
	recordAudit(ctx, s.repo, s.logger, meta, models.AuditActionAccountCreate, "accounts", account.ID, nil,
		map[string]interface{}{"email": account.Email, "role": account.Role})
	return account, nil
}

// Update modifies mutable account attributes.
func (s *AccountService) Update(ctx context.Context, id string, req dto.UpdateAccountRequest, meta models.RequestMeta) (*models.Account, error) {
	if req.Role != nil {
		role := models.UserRole(strings.ToUpper(string(*req.Role)))
		req.Role = &role
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid update account payload")
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "account not found", "failed to load account")
	}
	before := map[string]interface{}{"role": account.Role, "active": account.Active, "major": account.Major, "year_level": account.YearLevel}

	if req.FullName != nil {
		account.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		account.Role = *req.Role
	}
	if req.Major != nil {
		account.Major = req.Major
	}
	if req.YearLevel != nil {
		account.YearLevel = req.YearLevel
	}
	if req.Active != nil {
		account.Active = *req.Active
	}
	if account.Role == models.RoleStudent && (account.Major == nil || account.YearLevel == nil) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "students require major and year_level")
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, internalError(err, "failed to update account")
	}
	recordAudit(ctx, s.repo, s.logger, meta, models.AuditActionAccountUpdate, "accounts", account.ID, before,
		map[string]interface{}{"role": account.Role, "active": account.Active, "major": account.Major, "year_level": account.YearLevel})
	return account, nil
}

// Delete deactivates an account.
func (s *AccountService) Delete(ctx context.Context, id string, meta models.RequestMeta) error {
	if id == meta.ActorID {
		return appErrors.Clone(appErrors.ErrConflict, "cannot deactivate your own account")
	}
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "account not found", "failed to load account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete account")
	}
	recordAudit(ctx, s.repo, s.logger, meta, models.AuditActionAccountDelete, "accounts", account.ID,
		map[string]interface{}{"active": account.Active}, map[string]interface{}{"active": false})
	return nil
}
