package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// Sessions are stored encrypted at rest: AES-256-GCM keyed by the secret
// given at Open. One row at most; saving replaces any previous session.

// deriveKey stretches the configured secret into a 32-byte AES key.
func deriveKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// Session returns the stored login session, or (nil, nil) when none exists
// or the stored one has expired. Expired rows are deleted on read.
func (s *Store) Session() (*engine.Session, error) {
	var encrypted string
	var expiresAt int64
	err := s.db.QueryRow(
		`SELECT encrypted_data, expires_at FROM auth_sessions ORDER BY id DESC LIMIT 1`,
	).Scan(&encrypted, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read session: %w", err)
	}

	if expiresAt > 0 && expiresAt <= time.Now().UnixMilli() {
		s.db.Exec(`DELETE FROM auth_sessions`) //nolint:errcheck
		return nil, nil
	}

	plaintext, err := s.decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("store: decrypt session: %w", err)
	}
	var session engine.Session
	if err := json.Unmarshal(plaintext, &session); err != nil {
		return nil, fmt.Errorf("store: decode session: %w", err)
	}
	return &session, nil
}

// SaveSession encrypts and stores the session, replacing any existing one.
func (s *Store) SaveSession(session *engine.Session) error {
	plaintext, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("store: encode session: %w", err)
	}
	encrypted, err := s.encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("store: encrypt session: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: save session: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM auth_sessions`); err != nil {
		tx.Rollback()
		return fmt.Errorf("store: clear session: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		`INSERT INTO auth_sessions (encrypted_data, created_at, expires_at) VALUES (?, ?, ?)`,
		encrypted, now, session.ExpiresAt,
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("store: save session: %w", err)
	}
	return tx.Commit()
}

// DeleteSession removes any stored session.
func (s *Store) DeleteSession() error {
	if _, err := s.db.Exec(`DELETE FROM auth_sessions`); err != nil {
		return fmt.Errorf("store: delete session: %w", err)
	}
	return nil
}

func (s *Store) encrypt(plaintext []byte) (string, error) {
	block, err := aes.NewCipher(s.secret)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *Store) decrypt(encoded string) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(s.secret)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("ciphertext shorter than nonce")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
