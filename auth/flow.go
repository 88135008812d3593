package auth

import (
	"errors"

	"votechain/models"
)

// Stage identifies where a login attempt currently stands. Each enabled
// factor must be satisfied in order; a stage only advances on success.
type Stage int

const (
	StagePassword Stage = iota
	StageTOTP
	StageFace
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StagePassword:
		return "password"
	case StageTOTP:
		return "totp"
	case StageFace:
		return "face"
	case StageDone:
		return "done"
	}
	return "unknown"
}

// ErrWrongStage is returned when input arrives for a stage the flow is not
// in. It signals a caller bug, not a failed credential.
var ErrWrongStage = errors.New("login input does not match the current stage")

// Flow is one login attempt for one user. Factors the user has not enabled
// are skipped, but the flow then records that setup is still pending so the
// issued credential is only good for setup endpoints.
type Flow struct {
	stage Stage
	user  *models.User
	totp  *TotpService

	requiresTotpSetup bool
	requiresFaceSetup bool
}

func NewFlow(user *models.User, totp *TotpService) *Flow {
	return &Flow{stage: StagePassword, user: user, totp: totp}
}

func (f *Flow) Stage() Stage { return f.stage }

func (f *Flow) User() *models.User { return f.user }

func (f *Flow) Authenticated() bool { return f.stage == StageDone }

func (f *Flow) RequiresTotpSetup() bool { return f.requiresTotpSetup }

func (f *Flow) RequiresFaceSetup() bool { return f.requiresFaceSetup }

// SubmitPassword verifies the first factor. Failure is terminal for the
// attempt; success advances to the TOTP stage, or straight to done when the
// user has not finished TOTP setup yet.
func (f *Flow) SubmitPassword(password string) error {
	if f.stage != StagePassword {
		return ErrWrongStage
	}
	if !CheckPassword(f.user.PasswordHash, password) {
		return models.ErrInvalidCredentials
	}
	if !f.user.TotpEnabled {
		f.requiresTotpSetup = true
		f.stage = StageDone
		return nil
	}
	f.stage = StageTOTP
	return nil
}

// SubmitTotp verifies the second factor. redeemBackup is consulted when the
// code is not a valid TOTP, so a stored backup code can stand in; it may be
// nil. Failure keeps the flow in the TOTP stage for a retry.
func (f *Flow) SubmitTotp(code string, redeemBackup func(string) bool) error {
	if f.stage != StageTOTP {
		return ErrWrongStage
	}
	if !f.totp.Validate(code, f.user.TotpSecret) {
		if redeemBackup == nil || !redeemBackup(code) {
			return models.ErrInvalidTotp
		}
	}
	if !f.user.FaceEnabled {
		f.requiresFaceSetup = true
		f.stage = StageDone
		return nil
	}
	f.stage = StageFace
	return nil
}

// SubmitFace verifies the third factor. Failure keeps the flow in the face
// stage for a retry.
func (f *Flow) SubmitFace(matcher DescriptorMatcher, probe models.Descriptor) (MatchResult, error) {
	if f.stage != StageFace {
		return MatchResult{}, ErrWrongStage
	}
	result, err := matcher.Match(f.user.FaceDescriptor, probe)
	if err != nil {
		return result, models.ErrFaceMismatch
	}
	if !result.Match {
		return result, models.ErrFaceMismatch
	}
	f.stage = StageDone
	return result, nil
}
