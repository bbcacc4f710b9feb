package impl

import (
	"io"
	"log/slog"
	"testing"

	"simpletrader/internal/domain/entity"
	mockRepo "simpletrader/internal/mocks/repository"
	mockSvc "simpletrader/internal/mocks/service"
	"simpletrader/internal/usecase"

	"github.com/google/uuid"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// authServiceFixtures holds all test dependencies for authentication service tests.
type authServiceFixtures struct {
	service     usecase.AuthenticationUsecase
	accountRepo *mockRepo.MockAccountRepository
	hasher      *mockSvc.MockPasswordHasher
	publisher   *mockSvc.MockEventPublisher
}

func createTestAuthenticationService(t *testing.T) authServiceFixtures {
	accountRepo := mockRepo.NewMockAccountRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	publisher := mockSvc.NewMockEventPublisher(t)

	svc := NewAuthenticationService(AuthenticationServiceParams{
		AccountRepo: accountRepo,
		Hasher:      hasher,
		Publisher:   publisher,
		Logger:      newDiscardLogger(),
	})

	return authServiceFixtures{
		service:     svc,
		accountRepo: accountRepo,
		hasher:      hasher,
		publisher:   publisher,
	}
}

func newStoredAccount(username, email, passwordHash string) *entity.Account {
	return &entity.Account{
		ID: uuid.New(),
		AccountHolder: &entity.User{
			ID:           uuid.New(),
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
		},
	}
}
