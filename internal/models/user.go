package models

import (
	"time"
)

// User is the persisted credential record for one Google account. Every
// sensitive field is stored as fernet ciphertext; TokenURI is the only
// credential detail kept in plaintext because it is needed to locate the
// refresh endpoint and carries no secret.
//
// EncryptedScopes holds an encrypted JSON array of scope strings so the
// ordered list round-trips exactly.
type User struct {
	ID                    uint   `gorm:"primaryKey"`
	GoogleID              string `gorm:"uniqueIndex;not null"`
	EncryptedAccessToken  []byte
	EncryptedRefreshToken []byte
	TokenURI              string
	EncryptedClientID     []byte
	EncryptedClientSecret []byte
	EncryptedScopes       []byte
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (User) TableName() string {
	return "users"
}
