// SPDX-License-Identifier: Apache-2.0

// Package vault is the client-side orchestration layer: it combines the
// keychain, the master-secret gate, the session, and a record store into
// the operations the CLI exposes. Everything below this package sees only
// ciphertext attributes; everything above it sees only plaintext.
package vault

import (
	"context"
	"fmt"

	"github.com/askarin/fieldvault/internal/export"
	"github.com/askarin/fieldvault/internal/gate"
	"github.com/askarin/fieldvault/internal/keychain"
	"github.com/askarin/fieldvault/internal/logger"
	"github.com/askarin/fieldvault/internal/session"
	"github.com/askarin/fieldvault/internal/store"
	"github.com/askarin/fieldvault/models"
)

// Vault wires the zero-knowledge pieces together for one owner session.
type Vault struct {
	gate     gate.GateService
	keychain keychain.KeyChainService
	records  store.RecordRepository
	session  *session.Session
	logger   *logger.Logger
}

// New constructs a Vault over the given collaborators. The session
// determines the owner; it starts locked.
func New(g gate.GateService, kc keychain.KeyChainService, records store.RecordRepository, sess *session.Session, log *logger.Logger) *Vault {
	return &Vault{
		gate:     g,
		keychain: kc,
		records:  records,
		session:  sess,
		logger:   log,
	}
}

// Session exposes the underlying session for the auto-lock worker and for
// state display. Callers must not retain the key it yields.
func (v *Vault) Session() *session.Session {
	return v.session
}

// Setup performs first-time initialisation: it registers the master-secret
// verifier and immediately unlocks the session under the new secret. The
// returned strength report is advisory.
func (v *Vault) Setup(ctx context.Context, secret string) (keychain.Strength, error) {
	strength, err := v.gate.SetVerifier(ctx, v.session.OwnerID(), secret)
	if err != nil {
		return keychain.Strength{}, err
	}

	if err := v.unlockWith(secret); err != nil {
		return keychain.Strength{}, err
	}

	v.logger.Info().
		Str("owner_id", v.session.OwnerID()).
		Msg("vault initialised")

	return strength, nil
}

// Unlock verifies the master secret against the gate, derives the session
// key, and transitions the session to Unlocked. A wrong secret fails with
// [gate.ErrWrongSecret] and leaves the session locked.
func (v *Vault) Unlock(ctx context.Context, secret string) error {
	valid, err := v.gate.Verify(ctx, v.session.OwnerID(), secret)
	if err != nil {
		return err
	}
	if !valid {
		return gate.ErrWrongSecret
	}

	return v.unlockWith(secret)
}

// Lock drops the session key.
func (v *Vault) Lock() {
	v.session.Lock()
}

func (v *Vault) unlockWith(secret string) error {
	key, err := v.keychain.DeriveKey(secret, v.session.OwnerID())
	if err != nil {
		return err
	}
	v.session.Unlock(key)
	return nil
}

// CreateRecord encrypts the plaintext record under the session key and
// stores it. The returned record is plaintext again, with the
// store-assigned id and timestamps.
func (v *Vault) CreateRecord(ctx context.Context, record models.Record) (models.Record, error) {
	key, err := v.session.Key()
	if err != nil {
		return models.Record{}, err
	}

	record.OwnerID = v.session.OwnerID()
	encrypted, err := v.keychain.EncryptRecord(record, key)
	if err != nil {
		return models.Record{}, err
	}

	created, err := v.records.Create(ctx, encrypted)
	if err != nil {
		return models.Record{}, err
	}

	return v.keychain.DecryptRecord(created, key)
}

// ListRecords fetches and decrypts every record of the session owner,
// newest first.
func (v *Vault) ListRecords(ctx context.Context) ([]models.Record, error) {
	key, err := v.session.Key()
	if err != nil {
		return nil, err
	}

	encrypted, err := v.records.List(ctx, v.session.OwnerID())
	if err != nil {
		return nil, err
	}

	results := make([]models.Record, 0, len(encrypted))
	for _, record := range encrypted {
		decrypted, err := v.keychain.DecryptRecord(record, key)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", record.ID, err)
		}
		results = append(results, decrypted)
	}

	return results, nil
}

// GetRecord fetches and decrypts a single record by id.
func (v *Vault) GetRecord(ctx context.Context, id string) (models.Record, error) {
	key, err := v.session.Key()
	if err != nil {
		return models.Record{}, err
	}

	record, err := v.records.Get(ctx, v.session.OwnerID(), id)
	if err != nil {
		return models.Record{}, err
	}

	return v.keychain.DecryptRecord(record, key)
}

// UpdateRecord replaces the attribute set of an existing record with the
// given plaintext values, re-encrypted under the session key.
func (v *Vault) UpdateRecord(ctx context.Context, id string, record models.Record) (models.Record, error) {
	key, err := v.session.Key()
	if err != nil {
		return models.Record{}, err
	}

	encrypted, err := v.keychain.EncryptRecord(record, key)
	if err != nil {
		return models.Record{}, err
	}

	updated, err := v.records.Update(ctx, v.session.OwnerID(), id, encrypted)
	if err != nil {
		return models.Record{}, err
	}

	return v.keychain.DecryptRecord(updated, key)
}

// DeleteRecord removes a record permanently.
func (v *Vault) DeleteRecord(ctx context.Context, id string) error {
	if _, err := v.session.Key(); err != nil {
		return err
	}
	return v.records.Delete(ctx, v.session.OwnerID(), id)
}

// Rekey rotates the master secret. The verifier is rotated first (which
// proves the old secret), then every stored record is re-encrypted from
// the old key to the new one. Re-encryption is best effort, not atomic:
// per-record failures are collected in the returned [models.BatchResult]
// and the affected records stay readable under the old key. On return the
// session holds the new key.
func (v *Vault) Rekey(ctx context.Context, oldSecret string, newSecret string) (models.BatchResult, error) {
	ownerID := v.session.OwnerID()

	oldKey, err := v.keychain.DeriveKey(oldSecret, ownerID)
	if err != nil {
		return models.BatchResult{}, err
	}

	if _, err := v.gate.Rekey(ctx, ownerID, oldSecret, newSecret); err != nil {
		return models.BatchResult{}, err
	}

	newKey, err := v.keychain.DeriveKey(newSecret, ownerID)
	if err != nil {
		return models.BatchResult{}, err
	}

	encrypted, err := v.records.List(ctx, ownerID)
	if err != nil {
		return models.BatchResult{}, err
	}

	var result models.BatchResult
	for i, record := range encrypted {
		if err := v.reencryptRecord(ctx, record, oldKey, newKey); err != nil {
			v.logger.Err(err).
				Str("func", "Vault.Rekey").
				Str("id", record.ID).
				Msg("failed to re-encrypt record")
			result.Failed = append(result.Failed, models.BatchFailure{
				Index:    i,
				RecordID: record.ID,
				Reason:   err.Error(),
			})
			continue
		}
		result.Succeeded++
	}

	v.session.Unlock(newKey)
	oldKey.Zero()

	v.logger.Info().
		Str("owner_id", ownerID).
		Int("succeeded", result.Succeeded).
		Int("failed", len(result.Failed)).
		Msg("master secret rotated")

	return result, nil
}

func (v *Vault) reencryptRecord(ctx context.Context, record models.Record, oldKey, newKey keychain.Key) error {
	decrypted, err := v.keychain.DecryptRecord(record, oldKey)
	if err != nil {
		return err
	}

	reencrypted, err := v.keychain.EncryptRecord(decrypted, newKey)
	if err != nil {
		return err
	}

	_, err = v.records.Update(ctx, record.OwnerID, record.ID, reencrypted)
	return err
}

// Export decrypts the whole vault and renders it as a plaintext JSON
// bundle. The caller owns the sensitive output.
func (v *Vault) Export(ctx context.Context) ([]byte, error) {
	records, err := v.ListRecords(ctx)
	if err != nil {
		return nil, err
	}

	return export.Marshal(export.NewBundle(records))
}

// Import parses a bundle and stores every item as a new record encrypted
// under the current session key. Items are never matched against existing
// records — importing the same bundle twice creates duplicates, which the
// owner can prune. Per-item failures are collected in the returned
// [models.BatchResult].
func (v *Vault) Import(ctx context.Context, raw []byte) (models.BatchResult, error) {
	key, err := v.session.Key()
	if err != nil {
		return models.BatchResult{}, err
	}

	bundle, err := export.ParseBundle(raw)
	if err != nil {
		return models.BatchResult{}, err
	}

	var result models.BatchResult
	for i, item := range bundle.Items {
		// The store assigns fresh identity; only attributes carry over.
		record := models.Record{
			OwnerID:  v.session.OwnerID(),
			Title:    item.Title,
			Username: item.Username,
			Secret:   item.Secret,
			Locator:  item.Locator,
			Notes:    item.Notes,
		}

		encrypted, err := v.keychain.EncryptRecord(record, key)
		if err == nil {
			_, err = v.records.Create(ctx, encrypted)
		}
		if err != nil {
			v.logger.Err(err).
				Str("func", "Vault.Import").
				Int("index", i).
				Msg("failed to import bundle item")
			result.Failed = append(result.Failed, models.BatchFailure{
				Index:    i,
				RecordID: item.ID,
				Reason:   err.Error(),
			})
			continue
		}
		result.Succeeded++
	}

	return result, nil
}
