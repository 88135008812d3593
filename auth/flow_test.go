package auth

import (
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votechain/models"
)

func flowUser(t *testing.T, totpEnabled, faceEnabled bool) (*models.User, string) {
	t.Helper()

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	user := &models.User{
		ID:           "user-1",
		Username:     "alice",
		PasswordHash: hash,
	}

	svc := NewTotpService("votechain-test")
	p, err := svc.Generate(user.Username)
	require.NoError(t, err)
	user.TotpSecret = p.Secret
	user.TotpEnabled = totpEnabled

	if faceEnabled {
		user.FaceDescriptor = descriptorOf(0.5)
		user.FaceEnabled = true
	}
	return user, p.Secret
}

func currentCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	return code
}

func TestFlowAllFactorsEnabled(t *testing.T) {
	user, secret := flowUser(t, true, true)
	f := NewFlow(user, NewTotpService("votechain-test"))

	assert.Equal(t, StagePassword, f.Stage())
	require.NoError(t, f.SubmitPassword("correct horse"))
	assert.Equal(t, StageTOTP, f.Stage())
	assert.False(t, f.Authenticated())

	require.NoError(t, f.SubmitTotp(currentCode(t, secret), nil))
	assert.Equal(t, StageFace, f.Stage())

	result, err := f.SubmitFace(NewEuclideanMatcher(), descriptorOf(0.5))
	require.NoError(t, err)
	assert.True(t, result.Match)
	assert.Equal(t, StageDone, f.Stage())
	assert.True(t, f.Authenticated())
	assert.False(t, f.RequiresTotpSetup())
	assert.False(t, f.RequiresFaceSetup())
}

func TestFlowSkipsUnenrolledFactors(t *testing.T) {
	t.Run("no totp", func(t *testing.T) {
		user, _ := flowUser(t, false, false)
		f := NewFlow(user, NewTotpService("votechain-test"))

		require.NoError(t, f.SubmitPassword("correct horse"))
		assert.Equal(t, StageDone, f.Stage())
		assert.True(t, f.RequiresTotpSetup())
		assert.False(t, f.RequiresFaceSetup())
	})

	t.Run("totp but no face", func(t *testing.T) {
		user, secret := flowUser(t, true, false)
		f := NewFlow(user, NewTotpService("votechain-test"))

		require.NoError(t, f.SubmitPassword("correct horse"))
		require.NoError(t, f.SubmitTotp(currentCode(t, secret), nil))
		assert.Equal(t, StageDone, f.Stage())
		assert.False(t, f.RequiresTotpSetup())
		assert.True(t, f.RequiresFaceSetup())
	})
}

func TestFlowWrongPassword(t *testing.T) {
	user, _ := flowUser(t, true, true)
	f := NewFlow(user, NewTotpService("votechain-test"))

	err := f.SubmitPassword("wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	assert.Equal(t, StagePassword, f.Stage())
	assert.False(t, f.Authenticated())
}

func TestFlowTotpRetryAndBackup(t *testing.T) {
	user, secret := flowUser(t, true, false)
	f := NewFlow(user, NewTotpService("votechain-test"))
	require.NoError(t, f.SubmitPassword("correct horse"))

	// A bad code keeps the flow at the TOTP stage.
	err := f.SubmitTotp(wrongCodeFor(t, secret), nil)
	assert.ErrorIs(t, err, models.ErrInvalidTotp)
	assert.Equal(t, StageTOTP, f.Stage())

	// A backup code stands in for a valid TOTP.
	redeemed := ""
	redeem := func(code string) bool {
		redeemed = code
		return code == "aaaaa-bbbbb"
	}
	require.NoError(t, f.SubmitTotp("aaaaa-bbbbb", redeem))
	assert.Equal(t, "aaaaa-bbbbb", redeemed)
	assert.Equal(t, StageDone, f.Stage())
}

func TestFlowFaceRetry(t *testing.T) {
	user, secret := flowUser(t, true, true)
	f := NewFlow(user, NewTotpService("votechain-test"))
	require.NoError(t, f.SubmitPassword("correct horse"))
	require.NoError(t, f.SubmitTotp(currentCode(t, secret), nil))

	result, err := f.SubmitFace(NewEuclideanMatcher(), descriptorOf(1.5))
	assert.ErrorIs(t, err, models.ErrFaceMismatch)
	assert.False(t, result.Match)
	assert.Equal(t, StageFace, f.Stage())

	_, err = f.SubmitFace(NewEuclideanMatcher(), descriptorOf(0.5))
	require.NoError(t, err)
	assert.True(t, f.Authenticated())
}

func TestFlowRejectsOutOfOrderInput(t *testing.T) {
	user, _ := flowUser(t, true, true)
	f := NewFlow(user, NewTotpService("votechain-test"))

	assert.ErrorIs(t, f.SubmitTotp("123456", nil), ErrWrongStage)
	_, err := f.SubmitFace(NewEuclideanMatcher(), descriptorOf(0.5))
	assert.ErrorIs(t, err, ErrWrongStage)

	require.NoError(t, f.SubmitPassword("correct horse"))
	assert.ErrorIs(t, f.SubmitPassword("correct horse"), ErrWrongStage)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "password", StagePassword.String())
	assert.Equal(t, "totp", StageTOTP.String())
	assert.Equal(t, "face", StageFace.String())
	assert.Equal(t, "done", StageDone.String())
	assert.Equal(t, "unknown", Stage(42).String())
}
