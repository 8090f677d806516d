package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/snacksync/snacksync-api/internal/crypto"
	"github.com/snacksync/snacksync-api/internal/models"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// CredentialBundle is the plaintext credential set captured from the Google
// token exchange. Optional fields are empty strings / nil slices.
type CredentialBundle struct {
	AccessToken  string
	RefreshToken string
	TokenURI     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// LiveCredential is the decrypted, in-memory form of a stored bundle. It is
// request-scoped and never persisted or cached.
type LiveCredential struct {
	AccessToken  string
	RefreshToken string
	TokenURI     string
	ClientID     string
	ClientSecret string
	Scopes       []string

	// Expiry is zero when unknown; an unknown expiry is treated as valid
	// and left for the downstream API call to reject.
	Expiry time.Time
}

// Expired reports whether the access token is known to be stale.
func (c *LiveCredential) Expired() bool {
	return !c.Expiry.IsZero() && time.Now().After(c.Expiry)
}

// Refreshable reports whether the credential carries everything a refresh
// grant needs.
func (c *LiveCredential) Refreshable() bool {
	return c.RefreshToken != "" && c.TokenURI != "" && c.ClientID != ""
}

// Token returns the current access token.
func (c *LiveCredential) Token() string {
	return c.AccessToken
}

// CredentialService persists encrypted credential bundles and reconstitutes
// them into live credentials
type CredentialService interface {
	// UpsertCredentials creates or fully replaces the stored bundle for a Google ID
	UpsertCredentials(googleID string, bundle CredentialBundle) (*models.User, error)
	// GetUser returns the raw stored record without decrypting, nil when absent
	GetUser(googleID string) (*models.User, error)
	// AssembleCredentials decrypts the stored bundle into a LiveCredential, nil when
	// the user is unknown or no usable access token survives decryption
	AssembleCredentials(googleID string) (*LiveCredential, error)
}

type credentialService struct {
	db     *gorm.DB
	cipher *crypto.TokenCipher
}

// NewCredentialService creates a new instance of CredentialService
func NewCredentialService(db *gorm.DB, cipher *crypto.TokenCipher) CredentialService {
	return &credentialService{db: db, cipher: cipher}
}

func (s *credentialService) UpsertCredentials(googleID string, bundle CredentialBundle) (*models.User, error) {
	// Encrypt everything up front: if any field fails, nothing is written
	// and the previous record stays intact.
	record := models.User{GoogleID: googleID, TokenURI: bundle.TokenURI}

	var err error
	if record.EncryptedAccessToken, err = s.cipher.Encrypt(bundle.AccessToken); err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}
	if record.EncryptedRefreshToken, err = s.cipher.Encrypt(bundle.RefreshToken); err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if record.EncryptedClientID, err = s.cipher.Encrypt(bundle.ClientID); err != nil {
		return nil, fmt.Errorf("client id: %w", err)
	}
	if record.EncryptedClientSecret, err = s.cipher.Encrypt(bundle.ClientSecret); err != nil {
		return nil, fmt.Errorf("client secret: %w", err)
	}
	if len(bundle.Scopes) > 0 {
		serialized, err := json.Marshal(bundle.Scopes)
		if err != nil {
			return nil, fmt.Errorf("serializing scopes: %w", err)
		}
		if record.EncryptedScopes, err = s.cipher.Encrypt(string(serialized)); err != nil {
			return nil, fmt.Errorf("scopes: %w", err)
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		lookupErr := tx.Where("google_id = ?", googleID).First(&existing).Error
		switch {
		case errors.Is(lookupErr, gorm.ErrRecordNotFound):
			return tx.Create(&record).Error
		case lookupErr != nil:
			return lookupErr
		default:
			// Full replace: every credential column is overwritten,
			// including ones the new bundle leaves empty.
			record.ID = existing.ID
			record.CreatedAt = existing.CreatedAt
			return tx.Save(&record).Error
		}
	})
	if err != nil {
		return nil, err
	}

	log.WithField("google_id", googleID).Debug("Stored credential bundle")
	return &record, nil
}

func (s *credentialService) GetUser(googleID string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("google_id = ?", googleID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// fieldStatus is the outcome of decrypting a single stored field.
type fieldStatus int

const (
	fieldAbsent fieldStatus = iota
	fieldOK
	fieldCorrupt
)

type decryptedField struct {
	value  string
	status fieldStatus
}

// decryptField decrypts one stored column. A corrupt field is reported, not
// fatal; the completeness rule in AssembleCredentials decides what aborts.
func (s *credentialService) decryptField(googleID, name string, ciphertext []byte) decryptedField {
	if len(ciphertext) == 0 {
		return decryptedField{status: fieldAbsent}
	}
	plaintext, err := s.cipher.Decrypt(ciphertext)
	if err != nil {
		log.WithFields(logrus.Fields{
			"google_id": googleID,
			"field":     name,
		}).WithError(err).Error("Failed to decrypt stored credential field")
		return decryptedField{status: fieldCorrupt}
	}
	return decryptedField{value: plaintext, status: fieldOK}
}

func (s *credentialService) AssembleCredentials(googleID string) (*LiveCredential, error) {
	user, err := s.GetUser(googleID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	accessToken := s.decryptField(googleID, "access_token", user.EncryptedAccessToken)
	refreshToken := s.decryptField(googleID, "refresh_token", user.EncryptedRefreshToken)
	clientID := s.decryptField(googleID, "client_id", user.EncryptedClientID)
	clientSecret := s.decryptField(googleID, "client_secret", user.EncryptedClientSecret)
	scopes := s.decryptField(googleID, "scopes", user.EncryptedScopes)

	// Completeness rule: the access token is the only required field.
	// Everything else degrades to absent.
	if accessToken.status != fieldOK {
		log.WithField("google_id", googleID).Warn("No usable access token, cannot assemble credentials")
		return nil, nil
	}

	credential := &LiveCredential{
		AccessToken:  accessToken.value,
		RefreshToken: refreshToken.value,
		TokenURI:     user.TokenURI,
		ClientID:     clientID.value,
		ClientSecret: clientSecret.value,
	}

	if scopes.status == fieldOK {
		var parsed []string
		if err := json.Unmarshal([]byte(scopes.value), &parsed); err != nil {
			log.WithField("google_id", googleID).WithError(err).Error("Failed to decode stored scopes, proceeding without them")
		} else {
			credential.Scopes = parsed
		}
	}

	if credential.TokenURI == "" || credential.ClientID == "" {
		log.WithField("google_id", googleID).Warn("Credential is missing token URI or client id and will not be refreshable")
	}

	return credential, nil
}
