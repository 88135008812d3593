package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"votechain/auth"
	"votechain/models"
	"votechain/storage"
)

// AuthService owns registration and the three-factor login pipeline.
type AuthService struct {
	store   storage.Store
	tokens  *auth.TokenService
	totp    *auth.TotpService
	matcher auth.DescriptorMatcher
	log     *zap.Logger
}

func NewAuthService(store storage.Store, tokens *auth.TokenService, totp *auth.TotpService, matcher auth.DescriptorMatcher, log *zap.Logger) *AuthService {
	return &AuthService{
		store:   store,
		tokens:  tokens,
		totp:    totp,
		matcher: matcher,
		log:     log,
	}
}

func (s *AuthService) Register(username, password, fullName string) (*models.User, string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		FullName:     fullName,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateUser(user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.log.Info("user registered", zap.String("username", username))
	return user, token, nil
}

// LoginResult is the outcome of the password and TOTP stages. At most one of
// the Requires flags is set; Token is empty only when the attempt stopped at
// RequiresTotp.
type LoginResult struct {
	User  *models.User
	Token string

	RequiresTotp       bool // password accepted, TOTP code missing
	RequiresTotpSetup  bool
	RequiresFaceSetup  bool
	RequiresFaceVerify bool
}

func (s *AuthService) Login(username, password, totpCode string) (*LoginResult, error) {
	user, err := s.store.UserByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Unknown usernames and wrong passwords are indistinguishable.
		return nil, models.ErrInvalidCredentials
	}

	flow := auth.NewFlow(user, s.totp)
	if err := flow.SubmitPassword(password); err != nil {
		s.log.Info("login rejected", zap.String("username", username), zap.String("stage", flow.Stage().String()))
		return nil, err
	}

	if flow.Stage() == auth.StageTOTP {
		if totpCode == "" {
			return &LoginResult{RequiresTotp: true}, nil
		}
		if err := flow.SubmitTotp(totpCode, s.redeemBackupCode(user.ID)); err != nil {
			s.log.Info("login rejected", zap.String("username", username), zap.String("stage", flow.Stage().String()))
			return nil, err
		}
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{User: user, Token: token}
	switch {
	case flow.Stage() == auth.StageFace:
		result.RequiresFaceVerify = true
	case flow.RequiresTotpSetup():
		result.RequiresTotpSetup = true
	case flow.RequiresFaceSetup():
		result.RequiresFaceSetup = true
	}
	return result, nil
}

// redeemBackupCode returns the fallback consulted when a TOTP code does not
// validate: an unused stored backup code matches at most once.
func (s *AuthService) redeemBackupCode(userID string) func(string) bool {
	return func(code string) bool {
		codes, err := s.store.BackupCodesByUser(userID)
		if err != nil {
			return false
		}
		hash := auth.HashBackupCode(code)
		for _, c := range codes {
			if !c.Used && c.CodeHash == hash {
				if err := s.store.MarkBackupCodeUsed(c.ID); err != nil {
					return false
				}
				s.log.Info("backup code redeemed", zap.String("userId", userID))
				return true
			}
		}
		return false
	}
}

// SetupTotp writes a fresh secret to the user record with the enabled flag
// still false; the flag flips in VerifyTotp.
func (s *AuthService) SetupTotp(userID string) (*auth.Provisioning, error) {
	user, err := s.store.UserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	if user.TotpEnabled {
		return nil, models.ErrTotpAlreadySetup
	}

	provisioning, err := s.totp.Generate(user.Username)
	if err != nil {
		return nil, err
	}

	user.TotpSecret = provisioning.Secret
	if err := s.store.UpdateUser(user); err != nil {
		return nil, err
	}
	return provisioning, nil
}

// VerifyTotp enables the factor after the first valid code and returns the
// one-time backup codes.
func (s *AuthService) VerifyTotp(userID, code string) ([]string, error) {
	user, err := s.store.UserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	if user.TotpSecret == "" || !s.totp.Validate(code, user.TotpSecret) {
		return nil, models.ErrInvalidTotp
	}

	user.TotpEnabled = true
	if err := s.store.UpdateUser(user); err != nil {
		return nil, err
	}

	plain, records, err := auth.GenerateBackupCodes(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceBackupCodes(user.ID, records); err != nil {
		return nil, err
	}

	s.log.Info("totp enabled", zap.String("username", user.Username))
	return plain, nil
}

// EnrollFace stores the descriptor and enables the factor in one write.
// Re-enrollment is rejected while the factor is enabled.
func (s *AuthService) EnrollFace(userID string, descriptor models.Descriptor) error {
	user, err := s.store.UserByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return models.ErrUserNotFound
	}
	if user.FaceEnabled {
		return models.ErrFaceEnrolled
	}
	if len(descriptor) < models.MinDescriptorLength {
		return fmt.Errorf("%w: face descriptor must carry at least %d values", models.ErrValidation, models.MinDescriptorLength)
	}

	user.FaceDescriptor = descriptor
	user.FaceEnabled = true
	if err := s.store.UpdateUser(user); err != nil {
		return err
	}

	s.log.Info("face enrolled", zap.String("username", user.Username))
	return nil
}

// FaceVerifyResult reports the comparison outcome. Token and User are set
// only on a match.
type FaceVerifyResult struct {
	IsMatch    bool
	Confidence float64
	Token      string
	User       *models.User
}

func (s *AuthService) VerifyFace(username string, probe models.Descriptor) (*FaceVerifyResult, error) {
	user, err := s.store.UserByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	if !user.FaceEnabled {
		return nil, models.ErrFaceRequired
	}

	result, err := s.matcher.Match(user.FaceDescriptor, probe)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if !result.Match {
		s.log.Info("face verification failed", zap.String("username", username), zap.Float64("distance", result.Distance))
		return &FaceVerifyResult{IsMatch: false, Confidence: result.Confidence}, nil
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &FaceVerifyResult{
		IsMatch:    true,
		Confidence: result.Confidence,
		Token:      token,
		User:       user,
	}, nil
}

// UserByID resolves the bearer token's subject for privileged handlers.
func (s *AuthService) UserByID(id string) (*models.User, error) {
	user, err := s.store.UserByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}
