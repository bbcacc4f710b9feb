package postgres

import (
	"context"

	"simpletrader/internal/domain/entity"
	domainerrors "simpletrader/internal/domain/errors"
	"simpletrader/internal/domain/repository"
	"simpletrader/internal/errors"
	"simpletrader/internal/infra/persistence/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// accountRepository implements the domain.AccountRepository interface using GORM.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository is the constructor for accountRepository.
// It returns the repository as a domain.AccountRepository interface, adhering to dependency inversion.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{
		db: db,
	}
}

// FindByUsername retrieves the account whose holder has the given username.
func (repo *accountRepository) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	return repo.findByHolder(ctx, "username = ?", username)
}

// FindByEmail retrieves the account whose holder has the given email.
func (repo *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return repo.findByHolder(ctx, "email = ?", email)
}

func (repo *accountRepository) findByHolder(ctx context.Context, query string, value string) (*entity.Account, error) {
	db := repo.db.WithContext(ctx)

	var userM model.UserModel
	if err := db.Where(query, value).First(&userM).Error; err != nil {
		return nil, repo.translateFindError(err, "failed to find account holder")
	}

	var accountM model.AccountModel
	if err := db.Where("account_holder_id = ?", userM.ID).First(&accountM).Error; err != nil {
		return nil, repo.translateFindError(err, "failed to find account for holder")
	}
	accountM.AccountHolder = &userM

	return toAccountDomain(&accountM), nil
}

// Create persists the account holder and the account in one transaction.
// A unique index violation on username or email is reported as repository.ErrAccountConflict.
func (repo *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	if account == nil || account.AccountHolder == nil {
		return errors.Wrap(domainerrors.ErrAccountCreationFailed, "account holder is required")
	}

	accountM := fromAccountDomain(account)

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(accountM.AccountHolder).Error; err != nil {
			return err
		}
		accountM.AccountHolderID = accountM.AccountHolder.ID

		return tx.Omit(clause.Associations).Create(accountM).Error
	})
	if err != nil {
		if isUniqueConstraintViolation(err) {
			return errors.Wrap(repository.ErrAccountConflict, err.Error())
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrAccountCreationFailed.WrapMessage("missing required account information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create account")
	}

	// Update the entity with generated values
	account.ID = accountM.ID
	account.CreatedAt = accountM.CreatedAt
	account.AccountHolder.ID = accountM.AccountHolder.ID

	return nil
}

func (repo *accountRepository) translateFindError(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrAccountNotFound
	}

	return domainerrors.NewDatabaseExecuteError(err, message)
}

func toAccountDomain(data *model.AccountModel) *entity.Account {
	if data == nil {
		return nil
	}

	account := &entity.Account{
		ID:        data.ID,
		CreatedAt: data.CreatedAt,
	}
	if data.AccountHolder != nil {
		account.AccountHolder = toUserDomain(data.AccountHolder)
	}

	return account
}

func toUserDomain(data *model.UserModel) *entity.User {
	return &entity.User{
		ID:           data.ID,
		Username:     data.Username,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		DateJoined:   data.DateJoined,
	}
}

func fromAccountDomain(data *entity.Account) *model.AccountModel {
	holder := data.AccountHolder

	return &model.AccountModel{
		ID:              data.ID,
		AccountHolderID: holder.ID,
		AccountHolder: &model.UserModel{
			ID:           holder.ID,
			Username:     holder.Username,
			Email:        holder.Email,
			PasswordHash: holder.PasswordHash,
			DateJoined:   holder.DateJoined,
		},
		CreatedAt: data.CreatedAt,
	}
}
