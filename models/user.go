package models

import "time"

// Descriptor is a fixed-length numeric vector capturing facial geometry.
// Descriptors are compared by distance, never by equality.
type Descriptor []float64

// MinDescriptorLength is the smallest descriptor accepted at enrollment.
// Standard face embedding models emit 128 values or more.
const MinDescriptorLength = 128

type User struct {
	ID           string `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"uniqueIndex"`
	FullName     string `json:"fullName"`
	PasswordHash string `json:"-"`

	// TotpSecret may be set while TotpEnabled is still false: the secret is
	// written at setup and the flag flips only after the first valid code.
	TotpSecret  string `json:"-"`
	TotpEnabled bool   `json:"totpEnabled"`

	FaceDescriptor Descriptor `json:"-" gorm:"serializer:json"`
	FaceEnabled    bool       `json:"faceEnabled"`

	CreatedAt time.Time `json:"createdAt"`
}

// BackupCode is a single-use recovery code accepted in place of a TOTP code.
// Only the sha256 hash is stored.
type BackupCode struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"userId" gorm:"index"`
	CodeHash  string    `json:"-"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"createdAt"`
}
