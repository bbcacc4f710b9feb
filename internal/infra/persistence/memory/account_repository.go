// Package memory provides a process-local account store for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"simpletrader/internal/domain/entity"
	"simpletrader/internal/domain/repository"
	"simpletrader/internal/errors"

	"github.com/google/uuid"
)

// accountRepository keeps accounts in maps indexed by ID, username and email.
// All reads and writes hold mu, so the uniqueness check in Create is atomic.
type accountRepository struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*entity.Account
	byUsername map[string]uuid.UUID
	byEmail    map[string]uuid.UUID
	now        func() time.Time
}

// NewAccountRepository returns an empty in-memory account store.
func NewAccountRepository() repository.AccountRepository {
	return &accountRepository{
		byID:       make(map[uuid.UUID]*entity.Account),
		byUsername: make(map[string]uuid.UUID),
		byEmail:    make(map[string]uuid.UUID),
		now:        time.Now,
	}
}

func (repo *accountRepository) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	return repo.findByKey(ctx, repo.byUsername, username)
}

func (repo *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return repo.findByKey(ctx, repo.byEmail, email)
}

// Create stores a copy of the account and fills in its generated IDs and timestamp.
func (repo *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}
	if account == nil || account.AccountHolder == nil {
		return errors.New("account holder is required")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	holder := account.AccountHolder
	if _, taken := repo.byUsername[holder.Username]; taken {
		return errors.Wrapf(repository.ErrAccountConflict, "username %q", holder.Username)
	}
	if _, taken := repo.byEmail[holder.Email]; taken {
		return errors.Wrapf(repository.ErrAccountConflict, "email %q", holder.Email)
	}

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if holder.ID == uuid.Nil {
		holder.ID = uuid.New()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = repo.now().UTC()
	}

	repo.byID[account.ID] = cloneAccount(account)
	repo.byUsername[holder.Username] = account.ID
	repo.byEmail[holder.Email] = account.ID

	return nil
}

func (repo *accountRepository) findByKey(ctx context.Context, index map[string]uuid.UUID, key string) (*entity.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	id, ok := index[key]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	return repo.load(id)
}

// load must be called with mu held.
func (repo *accountRepository) load(id uuid.UUID) (*entity.Account, error) {
	account, ok := repo.byID[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	return cloneAccount(account), nil
}

// cloneAccount copies the account and its holder so callers never share stored pointers.
func cloneAccount(src *entity.Account) *entity.Account {
	dst := *src
	if src.AccountHolder != nil {
		holder := *src.AccountHolder
		dst.AccountHolder = &holder
	}

	return &dst
}
