package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "Sup3rSecretPassw0rd!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("WrongPassword1!", hash)
	req.NoError(err)
	req.False(match)
}

func TestCompareRejectsMalformedHash(t *testing.T) {
	req := require.New(t)
	for _, hash := range []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=2$!!notbase64!!$aGFzaA",
	} {
		match, err := ComparePassword("Whatever1!", hash)
		req.Error(err)
		req.False(match)
	}
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"test@example.com", "Alice", "ComplexPass123!"}, false},
		{"Invalid email", RegisterRequest{"notanemail", "Alice", "ComplexPass123!"}, true},
		{"Missing name", RegisterRequest{"test@example.com", "", "ComplexPass123!"}, true},
		{"Password too short", RegisterRequest{"test@example.com", "Alice", "Short1!"}, true},
		{"Missing digit", RegisterRequest{"test@example.com", "Alice", "NoDigitPassword!"}, true},
		{"Missing special char", RegisterRequest{"test@example.com", "Alice", "NoSpecialChar123"}, true},
		{"Missing uppercase", RegisterRequest{"test@example.com", "Alice", "nouppercase123!!"}, true},
		{"Password too long (edge case)", RegisterRequest{"test@example.com", "Alice", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("test_secret_for_unit_tests_only", time.Hour)

	token, err := manager.Generate("alice@example.com", "Alice")
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := manager.Validate(token)
	req.NoError(err)
	req.Equal("alice@example.com", claims.Subject)
	req.Equal("Alice", claims.Name)
}

func TestTokenExpiry(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("test_secret_for_unit_tests_only", -time.Minute)

	token, err := manager.Generate("alice@example.com", "Alice")
	req.NoError(err)

	_, err = manager.Validate(token)
	req.Error(err)
}
