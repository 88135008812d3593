package auth

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image/png"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"votechain/models"
)

const (
	totpPeriod = 30
	// totpSkew tolerates ±2 time steps of clock drift between the server
	// and the authenticator device.
	totpSkew = 2

	backupCodeCount = 8
)

// TotpService provisions and validates time-based one-time passwords.
type TotpService struct {
	issuer string
}

func NewTotpService(issuer string) *TotpService {
	return &TotpService{issuer: issuer}
}

// Provisioning is what a client needs to register the secret in an
// authenticator app.
type Provisioning struct {
	Secret         string
	QRCodeImage    string
	ManualEntryKey string
}

func (s *TotpService) Generate(username string) (*Provisioning, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: username,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP secret: %w", err)
	}

	img, err := key.Image(256, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	return &Provisioning{
		Secret:         key.Secret(),
		QRCodeImage:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		ManualEntryKey: key.Secret(),
	}, nil
}

func (s *TotpService) Validate(code, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// GenerateBackupCodes returns the plaintext codes to show the user once,
// plus the hashed records to persist.
func GenerateBackupCodes(userID string) ([]string, []models.BackupCode, error) {
	plain := make([]string, backupCodeCount)
	records := make([]models.BackupCode, backupCodeCount)
	now := time.Now()

	for i := range plain {
		raw := make([]byte, 5)
		if _, err := rand.Read(raw); err != nil {
			return nil, nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		code := hex.EncodeToString(raw)
		plain[i] = code[:5] + "-" + code[5:]
		records[i] = models.BackupCode{
			ID:        uuid.New().String(),
			UserID:    userID,
			CodeHash:  HashBackupCode(plain[i]),
			CreatedAt: now,
		}
	}
	return plain, records, nil
}

func HashBackupCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
