package services

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"radchat/auth"
	"radchat/errors"
	"radchat/repositories"
)

func newAuthFixture(t *testing.T) IAuthService {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tokens := auth.NewTokenManager("test_secret_for_unit_tests_only", time.Hour)
	return NewAuthService(repositories.NewUserRepository(db), tokens)
}

func TestRegisterThenLogin(t *testing.T) {
	req := require.New(t)
	service := newAuthFixture(t)

	token, err := service.Register("alice@example.com", "Alice", "ComplexPass123!")
	req.NoError(err)
	req.NotEmpty(token)

	token, err = service.Login("alice@example.com", "ComplexPass123!")
	req.NoError(err)
	req.NotEmpty(token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	req := require.New(t)
	service := newAuthFixture(t)

	_, err := service.Register("alice@example.com", "Alice", "ComplexPass123!")
	req.NoError(err)

	_, err = service.Register("alice@example.com", "Alice", "ComplexPass123!")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestRegisterWeakPassword(t *testing.T) {
	req := require.New(t)
	service := newAuthFixture(t)

	_, err := service.Register("alice@example.com", "Alice", "weak")
	req.ErrorIs(err, errors.ErrInvalidPassword)
}

func TestLoginFailures(t *testing.T) {
	req := require.New(t)
	service := newAuthFixture(t)

	_, err := service.Register("alice@example.com", "Alice", "ComplexPass123!")
	req.NoError(err)

	// Wrong password and unknown account look identical to the caller.
	_, err = service.Login("alice@example.com", "WrongPass123!")
	req.ErrorIs(err, errors.ErrInvalidCredentials)

	_, err = service.Login("nobody@example.com", "ComplexPass123!")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}
