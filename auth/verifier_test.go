package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"radchat/domain"
	"radchat/errors"
)

type lookupStub struct {
	participants map[string]domain.Participant
}

func (s lookupStub) FindParticipant(email string) (domain.Participant, error) {
	p, ok := s.participants[email]
	if !ok {
		return domain.Participant{}, errors.ErrUnknownParticipant
	}
	return p, nil
}

func newVerifierFixture(duration time.Duration) (*Verifier, *TokenManager) {
	tokens := NewTokenManager("test_secret_for_unit_tests_only", duration)
	accounts := lookupStub{participants: map[string]domain.Participant{
		"alice@example.com": {ID: "u-1", Email: "alice@example.com", Name: "Alice"},
	}}
	return NewVerifier(tokens, accounts), tokens
}

func TestVerify_ResolvesParticipant(t *testing.T) {
	req := require.New(t)
	verifier, tokens := newVerifierFixture(time.Hour)

	token, err := tokens.Generate("alice@example.com", "Alice")
	req.NoError(err)

	participant, err := verifier.Verify(token)
	req.NoError(err)
	req.Equal("Alice", participant.Name)
	req.Equal("u-1", participant.ID)
}

func TestVerify_ErrorTaxonomy(t *testing.T) {
	req := require.New(t)
	verifier, tokens := newVerifierFixture(time.Hour)

	// Missing
	_, err := verifier.Verify("")
	req.ErrorIs(err, errors.ErrMissingCredential)

	// Malformed: anything the signing scheme cannot decode
	_, err = verifier.Verify("not.a.jwt")
	req.ErrorIs(err, errors.ErrMalformedCredential)

	// Unknown participant: valid signature, no matching account
	ghost, err := tokens.Generate("ghost@example.com", "Ghost")
	req.NoError(err)
	_, err = verifier.Verify(ghost)
	req.ErrorIs(err, errors.ErrUnknownParticipant)

	// Expired
	expiredVerifier, expiredTokens := newVerifierFixture(-time.Minute)
	stale, err := expiredTokens.Generate("alice@example.com", "Alice")
	req.NoError(err)
	_, err = expiredVerifier.Verify(stale)
	req.ErrorIs(err, errors.ErrExpiredCredential)
}
