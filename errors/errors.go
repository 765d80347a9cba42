package errors

import "fmt"

// Credential verification failures (connect / message / toggle paths).
var (
	ErrMissingCredential   = fmt.Errorf("no credential provided")
	ErrMalformedCredential = fmt.Errorf("credential is malformed")
	ErrExpiredCredential   = fmt.Errorf("credential has expired")
	ErrUnknownParticipant  = fmt.Errorf("participant not found")
)

// Automated-turn outcomes. Returned to the external trigger as structured
// results; only ErrProviderExhausted also mutates visible state.
var (
	ErrNoAudience           = fmt.Errorf("no connected participants")
	ErrNoEnabledRobots      = fmt.Errorf("no enabled robochatters")
	ErrConfigurationMissing = fmt.Errorf("automation configuration missing")
	ErrEmptyHistory         = fmt.Errorf("chat history is empty")
	ErrProviderExhausted    = fmt.Errorf("text generation provider exhausted")
	ErrAlreadyRunning       = fmt.Errorf("an automated turn is already running")
)

// Account and persistence failures.
var (
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrRobotNotFound      = fmt.Errorf("robochatter not found")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)
