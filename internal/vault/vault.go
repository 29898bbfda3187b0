// Package vault keeps the API credential on disk sealed under a user
// passphrase, and manages the shared-secret unlock gate for the dashboard.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/pbkdf2"

	"github.com/david/fund-dashboard/internal/cache"
)

// Cache keys owned by this package.
const (
	credentialKey  = "openai_api_key"
	unlockTokenKey = "app_unlock_token"
)

var (
	ErrNoCredential  = errors.New("no stored credential")
	ErrBadPassphrase = errors.New("wrong passphrase or corrupted vault")
)

const pbkdf2Iterations = 4096

// sealedCredential is the persisted ciphertext envelope.
type sealedCredential struct {
	Method     string `json:"method"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, 32, sha256.New)
}

// SaveAPIKey seals the API key under the passphrase and persists it.
func SaveAPIKey(store *cache.Store, passphrase, apiKey string) error {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	sealed := sealedCredential{
		Method:     "aesgcm",
		Salt:       base64.RawURLEncoding.EncodeToString(salt),
		Nonce:      base64.RawURLEncoding.EncodeToString(nonce),
		Ciphertext: base64.RawURLEncoding.EncodeToString(gcm.Seal(nil, nonce, []byte(apiKey), nil)),
	}
	store.Write(credentialKey, sealed)
	return nil
}

// LoadAPIKey unseals the stored API key with the passphrase.
func LoadAPIKey(store *cache.Store, passphrase string) (string, error) {
	var sealed sealedCredential
	if _, ok := store.ReadInto(credentialKey, &sealed); !ok {
		return "", ErrNoCredential
	}
	if sealed.Method != "aesgcm" {
		return "", ErrBadPassphrase
	}

	salt, err := base64.RawURLEncoding.DecodeString(sealed.Salt)
	if err != nil {
		return "", ErrBadPassphrase
	}
	nonce, err := base64.RawURLEncoding.DecodeString(sealed.Nonce)
	if err != nil {
		return "", ErrBadPassphrase
	}
	ciphertext, err := base64.RawURLEncoding.DecodeString(sealed.Ciphertext)
	if err != nil {
		return "", ErrBadPassphrase
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(nonce) != gcm.NonceSize() {
		return "", ErrBadPassphrase
	}
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrBadPassphrase
	}
	return string(plain), nil
}

// DeleteAPIKey removes the sealed credential.
func DeleteAPIKey(store *cache.Store) {
	store.Clear(credentialKey)
}

// Unlock checks the attempt against the configured gate secret and, on
// success, persists a signed session token so the gate stays open across
// reloads. An empty gate secret means the gate is disabled and unlock
// always succeeds without persisting anything.
func Unlock(store *cache.Store, gateSecret, attempt string) error {
	gateSecret = strings.TrimSpace(gateSecret)
	if gateSecret == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(gateSecret), []byte(attempt)) != 1 {
		return errors.New("incorrect password")
	}

	claims := jwt.MapClaims{
		"sub": "dashboard",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tokenSigningKey(gateSecret))
	if err != nil {
		return fmt.Errorf("sign unlock token: %w", err)
	}
	store.Write(unlockTokenKey, token)
	return nil
}

// Unlocked reports whether a valid unlock token is persisted. With the gate
// disabled this is always true.
func Unlocked(store *cache.Store, gateSecret string) bool {
	gateSecret = strings.TrimSpace(gateSecret)
	if gateSecret == "" {
		return true
	}

	var tokenString string
	if _, ok := store.ReadInto(unlockTokenKey, &tokenString); !ok {
		return false
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tokenSigningKey(gateSecret), nil
	})
	return err == nil && token.Valid
}

// Lock clears the persisted unlock token.
func Lock(store *cache.Store) {
	store.Clear(unlockTokenKey)
}

func tokenSigningKey(gateSecret string) []byte {
	sum := sha256.Sum256([]byte("funddash-unlock:" + gateSecret))
	return sum[:]
}
