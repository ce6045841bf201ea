// SPDX-License-Identifier: Apache-2.0

package keychain

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"

	"github.com/askarin/fieldvault/models"
)

// Key is the session key: 256 bits of Argon2id output held only in
// volatile memory while the session is unlocked.
type Key []byte

// Zero overwrites the key material in place. Called on lock and sign-out
// so the key does not linger on the heap longer than necessary.
func (k Key) Zero() {
	for i := range k {
		k[i] = 0
	}
}

// keyChainService is the private implementation of [KeyChainService].
type keyChainService struct {
	// Argon2id tuning parameters. Stored in the struct so they can be
	// adjusted per deployment target (e.g. mobile vs. desktop).
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
	argonKeyLen  uint32
}

// NewKeyChainService constructs a [KeyChainService] with the Argon2id
// parameters recommended by OWASP (2024):
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
//   - key length:  32 bytes (256 bits)
func NewKeyChainService() KeyChainService {
	return &keyChainService{
		argonTime:    1,
		argonMemory:  64 * 1024, // 64 MiB
		argonThreads: 4,
		argonKeyLen:  32, // 256 bits
	}
}

// DeriveKey implements [KeyChainService]. It derives a 256-bit session key
// from the master secret and the owner identifier using Argon2id with the
// parameters stored in the receiver. The owner identifier is the salt:
// deterministic per owner, distinct across owners, and never secret.
func (k *keyChainService) DeriveKey(secret string, ownerID string) (Key, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: shorter than %d characters", ErrWeakSecret, MinSecretLength)
	}

	key := argon2.IDKey(
		[]byte(secret),
		[]byte(ownerID),
		k.argonTime,
		k.argonMemory,
		k.argonThreads,
		k.argonKeyLen,
	)

	return Key(key), nil
}

// EncryptField implements [KeyChainService]. It encrypts plaintext with the
// session key using AES-256-GCM. A random 12-byte nonce is prepended to the
// ciphertext so that the decryption side can locate it:
// blob = nonce ‖ ciphertext; the blob is returned base64 (standard
// encoding) encoded.
//
// The empty string maps to the empty string. Empty attributes are stored
// as empty strings rather than ciphertext of "", so that an absent field
// round-trips as absent instead of leaking a fixed-size padding pattern.
func (k *keyChainService) EncryptField(plaintext string, key Key) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	// Prepend the nonce so DecryptField can split it out.
	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	blob := append(nonce, ciphertext...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptField implements [KeyChainService]. It base64-decodes the blob,
// splits out the nonce, and decrypts with AES-256-GCM. Any failure past
// cipher construction — undecodable base64, a short blob, or an
// authentication-tag mismatch — is reported as [ErrWrongKeyOrCorruptData].
// An auth-tag mismatch almost always means the user entered the wrong
// master secret, producing a wrong key.
func (k *keyChainService) DecryptField(ciphertext string, key Key) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: decode base64: %w", ErrWrongKeyOrCorruptData, err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrWrongKeyOrCorruptData)
	}

	// Split the blob into nonce and actual ciphertext.
	nonce, sealed := blob[:nonceSize], blob[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWrongKeyOrCorruptData, err)
	}

	return string(plaintext), nil
}

// EncryptRecord implements [KeyChainService]. It runs EncryptField over
// every confidential attribute and copies identifier, owner and timestamps
// through unchanged.
func (k *keyChainService) EncryptRecord(record models.Record, key Key) (models.Record, error) {
	out := record

	var err error
	if out.Title, err = k.EncryptField(record.Title, key); err != nil {
		return models.Record{}, fmt.Errorf("encrypt title: %w", err)
	}
	if out.Username, err = k.EncryptField(record.Username, key); err != nil {
		return models.Record{}, fmt.Errorf("encrypt username: %w", err)
	}
	if out.Secret, err = k.EncryptField(record.Secret, key); err != nil {
		return models.Record{}, fmt.Errorf("encrypt secret: %w", err)
	}
	if out.Locator, err = k.EncryptField(record.Locator, key); err != nil {
		return models.Record{}, fmt.Errorf("encrypt locator: %w", err)
	}
	if out.Notes, err = k.EncryptField(record.Notes, key); err != nil {
		return models.Record{}, fmt.Errorf("encrypt notes: %w", err)
	}

	return out, nil
}

// DecryptRecord implements [KeyChainService]. It reverses EncryptRecord.
func (k *keyChainService) DecryptRecord(record models.Record, key Key) (models.Record, error) {
	out := record

	var err error
	if out.Title, err = k.DecryptField(record.Title, key); err != nil {
		return models.Record{}, fmt.Errorf("decrypt title: %w", err)
	}
	if out.Username, err = k.DecryptField(record.Username, key); err != nil {
		return models.Record{}, fmt.Errorf("decrypt username: %w", err)
	}
	if out.Secret, err = k.DecryptField(record.Secret, key); err != nil {
		return models.Record{}, fmt.Errorf("decrypt secret: %w", err)
	}
	if out.Locator, err = k.DecryptField(record.Locator, key); err != nil {
		return models.Record{}, fmt.Errorf("decrypt locator: %w", err)
	}
	if out.Notes, err = k.DecryptField(record.Notes, key); err != nil {
		return models.Record{}, fmt.Errorf("decrypt notes: %w", err)
	}

	return out, nil
}

// newGCM builds an AES-256-GCM AEAD from the session key.
func newGCM(key Key) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return gcm, nil
}
