//go:generate go run go.uber.org/mock/mockgen -source=verifier.go -destination=../mocks/mock_verifier.go -package=mocks
package auth

import (
	stderrors "errors"

	"github.com/golang-jwt/jwt/v5"

	"radchat/domain"
	"radchat/errors"
)

// IAccountLookup resolves a verified email to a participant identity.
type IAccountLookup interface {
	FindParticipant(email string) (domain.Participant, error)
}

type IVerifier interface {
	Verify(credential string) (domain.Participant, error)
}

// Verifier validates an opaque session credential and resolves it to a
// participant. Pure lookup plus signature check, no side effects.
type Verifier struct {
	tokens   *TokenManager
	accounts IAccountLookup
}

func NewVerifier(tokens *TokenManager, accounts IAccountLookup) *Verifier {
	return &Verifier{tokens: tokens, accounts: accounts}
}

// Verify maps every decoding failure of the signing scheme to
// ErrMalformedCredential; expiry is reported separately so the client
// can re-authenticate instead of re-registering.
func (v *Verifier) Verify(credential string) (domain.Participant, error) {
	if credential == "" {
		return domain.Participant{}, errors.ErrMissingCredential
	}

	claims, err := v.tokens.Validate(credential)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return domain.Participant{}, errors.ErrExpiredCredential
		}
		return domain.Participant{}, errors.ErrMalformedCredential
	}

	participant, err := v.accounts.FindParticipant(claims.Subject)
	if err != nil {
		return domain.Participant{}, errors.ErrUnknownParticipant
	}
	return participant, nil
}
