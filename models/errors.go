package models

import "errors"

// DomainError carries a stable machine-checkable code alongside the
// human-readable message. Handlers map codes onto HTTP statuses.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

var (
	ErrValidation         = &DomainError{Code: "VALIDATION_ERROR", Message: "malformed request"}
	ErrUsernameExists     = &DomainError{Code: "USERNAME_EXISTS", Message: "username is already taken"}
	ErrInvalidCredentials = &DomainError{Code: "INVALID_CREDENTIALS", Message: "invalid username or password"}
	ErrInvalidTotp        = &DomainError{Code: "INVALID_TOTP", Message: "invalid authenticator code"}
	ErrTotpRequired       = &DomainError{Code: "TOTP_REQUIRED", Message: "two-factor authentication must be enabled before voting"}
	ErrTotpAlreadySetup   = &DomainError{Code: "TOTP_ALREADY_ENABLED", Message: "two-factor authentication is already enabled"}
	ErrFaceRequired       = &DomainError{Code: "FACE_REQUIRED", Message: "face recognition must be enabled before voting"}
	ErrFaceMismatch       = &DomainError{Code: "FACE_MISMATCH", Message: "face verification failed"}
	ErrFaceEnrolled       = &DomainError{Code: "FACE_ALREADY_ENROLLED", Message: "face recognition is already enabled"}
	ErrTokenMissing       = &DomainError{Code: "ACCESS_TOKEN_MISSING", Message: "authorization header required"}
	ErrTokenInvalid       = &DomainError{Code: "TOKEN_INVALID", Message: "token is invalid or expired"}
	ErrUserNotFound       = &DomainError{Code: "USER_NOT_FOUND", Message: "user not found"}
	ErrElectionNotFound   = &DomainError{Code: "ELECTION_NOT_FOUND", Message: "election not found"}
	ErrElectionInactive   = &DomainError{Code: "ELECTION_INACTIVE", Message: "election is not currently active"}
	ErrCandidateNotFound  = &DomainError{Code: "CANDIDATE_NOT_FOUND", Message: "candidate is not on the ballot for this election"}
	ErrDuplicateVote      = &DomainError{Code: "DUPLICATE_VOTE", Message: "a vote has already been cast in this election"}
)

// CodeOf extracts the domain error code, or "INTERNAL" for anything else.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return "INTERNAL"
}
