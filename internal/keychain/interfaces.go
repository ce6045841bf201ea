package keychain

import "github.com/askarin/fieldvault/models"

// KeyChainService owns all client-side cryptography of the zero-knowledge
// scheme. It knows nothing about the network, the database, or sessions.
//
// Scheme:
//
//	Key = DeriveKey(secret, ownerID)        — Argon2id, owner id as salt
//	ct  = EncryptField(plaintext, Key)      — AES-256-GCM, fresh nonce
//	pt  = DecryptField(ct, Key)             — authenticates before returning
//
// The derived key exists only in client memory, is never serialized, never
// logged, and never leaves the process.
type KeyChainService interface {
	// DeriveKey derives the 256-bit session key from the owner's master
	// secret. The owner identifier acts as a per-owner salt so the same
	// secret yields different keys for different owners. The derivation is
	// deterministic: repeated calls with the same inputs return the same
	// key. Returns ErrWeakSecret when the secret is shorter than
	// MinSecretLength.
	DeriveKey(secret string, ownerID string) (Key, error)

	// EncryptField encrypts a single attribute value with the session key.
	// The empty string is the identity: EncryptField("", k) == "". The
	// output is base64(nonce || ciphertext) with a fresh random nonce per
	// call, so equal plaintexts never produce equal ciphertexts.
	EncryptField(plaintext string, key Key) (string, error)

	// DecryptField reverses EncryptField. The empty string is the
	// identity. Returns ErrWrongKeyOrCorruptData when the ciphertext
	// cannot be decoded or authenticated under the given key — the caller
	// cannot distinguish a wrong master secret from corrupted data, and
	// no richer signal exists.
	DecryptField(ciphertext string, key Key) (string, error)

	// EncryptRecord applies EncryptField to every attribute of the record
	// (title, username, secret, locator, notes). ID, owner and timestamps
	// pass through untouched — they stay queryable by the store.
	EncryptRecord(record models.Record, key Key) (models.Record, error)

	// DecryptRecord reverses EncryptRecord.
	DecryptRecord(record models.Record, key Key) (models.Record, error)
}
