package service

import (
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"votechain/auth"
	"votechain/models"
	"votechain/storage"
)

func newAuthService(store storage.Store) *AuthService {
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)
	return NewAuthService(store, tokens, auth.NewTotpService("votechain-test"), auth.NewEuclideanMatcher(), zap.NewNop())
}

func probeDescriptor(value float64) models.Descriptor {
	d := make(models.Descriptor, models.MinDescriptorLength)
	for i := range d {
		d[i] = value
	}
	return d
}

func totpCodeNow(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	return code
}

func TestRegister(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newAuthService(store)

	user, token, err := svc.Register("alice", "hunter2hunter2", "Alice Example")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)
	assert.False(t, user.TotpEnabled)
	assert.False(t, user.FaceEnabled)

	_, _, err = svc.Register("alice", "hunter2hunter2", "Other Alice")
	assert.ErrorIs(t, err, models.ErrUsernameExists)
}

func TestLoginBeforeTotpSetup(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newAuthService(store)
	_, _, err := svc.Register("alice", "hunter2hunter2", "Alice Example")
	require.NoError(t, err)

	result, err := svc.Login("alice", "hunter2hunter2", "")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.RequiresTotpSetup)
	assert.False(t, result.RequiresTotp)
	assert.False(t, result.RequiresFaceVerify)
}

func TestLoginBadCredentials(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newAuthService(store)
	_, _, err := svc.Register("alice", "hunter2hunter2", "Alice Example")
	require.NoError(t, err)

	_, err = svc.Login("alice", "wrong password", "")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	// Unknown usernames look exactly like wrong passwords.
	_, err = svc.Login("nobody", "hunter2hunter2", "")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestTotpSetupAndVerify(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newAuthService(store)
	user, _, err := svc.Register("alice", "hunter2hunter2", "Alice Example")
	require.NoError(t, err)

	p, err := svc.SetupTotp(user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, p.Secret)
	assert.NotEmpty(t, p.QRCodeImage)

	// Setup alone must not enable the factor.
	stored, err := store.UserByID(user.ID)
	require.NoError(t, err)
	assert.False(t, stored.TotpEnabled)
	assert.Equal(t, p.Secret, stored.TotpSecret)

	_, err = svc.VerifyTotp(user.ID, "000000")
	if err == nil {
		t.Skip("candidate code happened to be valid for this secret")
	}
	assert.ErrorIs(t, err, models.ErrInvalidTotp)

	codes, err := svc.VerifyTotp(user.ID, totpCodeNow(t, p.Secret))
	require.NoError(t, err)
	assert.Len(t, codes, 8)

	stored, err = store.UserByID(user.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotpEnabled)

	// A second setup while enabled is rejected.
	_, err = svc.SetupTotp(user.ID)
	assert.ErrorIs(t, err, models.ErrTotpAlreadySetup)
}

func TestLoginWithTotpAndBackupCode(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newAuthService(store)
	user, _, err := svc.Register("alice", "hunter2hunter2", "Alice Example")
	require.NoError(t, err)

	p, err := svc.SetupTotp(user.ID)
	require.NoError(t, err)
	backupCodes, err := svc.VerifyTotp(user.ID, totpCodeNow(t, p.Secret))
	require.NoError(t, err)

	// Password alone now stops at the TOTP stage, with no token issued.
	result, err := svc.Login("alice", "hunter2hunter2", "")
	require.NoError(t, err)
	assert.True(t, result.RequiresTotp)
	assert.Empty(t, result.Token)

	result, err = svc.Login("alice", "hunter2hunter2", totpCodeNow(t, p.Secret))
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.RequiresFaceSetup)

	// A backup code stands in for the TOTP, once.
	result, err = svc.Login("alice", "hunter2hunter2", backupCodes[0])
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = svc.Login("alice", "hunter2hunter2", backupCodes[0])
	assert.ErrorIs(t, err, models.ErrInvalidTotp)
}

func TestFaceEnrollAndVerify(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newAuthService(store)
	user, _, err := svc.Register("alice", "hunter2hunter2", "Alice Example")
	require.NoError(t, err)

	// Too-short descriptors are rejected as validation failures.
	err = svc.EnrollFace(user.ID, probeDescriptor(0.5)[:16])
	assert.ErrorIs(t, err, models.ErrValidation)

	require.NoError(t, svc.EnrollFace(user.ID, probeDescriptor(0.5)))
	stored, err := store.UserByID(user.ID)
	require.NoError(t, err)
	assert.True(t, stored.FaceEnabled)

	err = svc.EnrollFace(user.ID, probeDescriptor(0.5))
	assert.ErrorIs(t, err, models.ErrFaceEnrolled)

	match, err := svc.VerifyFace("alice", probeDescriptor(0.5))
	require.NoError(t, err)
	assert.True(t, match.IsMatch)
	assert.NotEmpty(t, match.Token)
	assert.Equal(t, 100.0, match.Confidence)

	// A mismatch is a result, not an error: no token is issued.
	miss, err := svc.VerifyFace("alice", probeDescriptor(1.5))
	require.NoError(t, err)
	assert.False(t, miss.IsMatch)
	assert.Empty(t, miss.Token)
}

func TestVerifyFaceBeforeEnrollment(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newAuthService(store)
	_, _, err := svc.Register("alice", "hunter2hunter2", "Alice Example")
	require.NoError(t, err)

	_, err = svc.VerifyFace("alice", probeDescriptor(0.5))
	assert.ErrorIs(t, err, models.ErrFaceRequired)

	_, err = svc.VerifyFace("nobody", probeDescriptor(0.5))
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestFullyEnrolledLoginRequiresFaceVerify(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newAuthService(store)
	user, _, err := svc.Register("alice", "hunter2hunter2", "Alice Example")
	require.NoError(t, err)

	p, err := svc.SetupTotp(user.ID)
	require.NoError(t, err)
	_, err = svc.VerifyTotp(user.ID, totpCodeNow(t, p.Secret))
	require.NoError(t, err)
	require.NoError(t, svc.EnrollFace(user.ID, probeDescriptor(0.5)))

	result, err := svc.Login("alice", "hunter2hunter2", totpCodeNow(t, p.Secret))
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.RequiresFaceVerify)
	assert.False(t, result.RequiresTotpSetup)
	assert.False(t, result.RequiresFaceSetup)
}
