// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/askarin/fieldvault/internal/keychain"
	"github.com/askarin/fieldvault/internal/logger"
	"github.com/askarin/fieldvault/internal/store"
	"github.com/askarin/fieldvault/models"
)

// gateService is the default [GateService] implementation over a
// [store.VerifierRepository].
type gateService struct {
	verifiers  store.VerifierRepository
	bcryptCost int
	logger     *logger.Logger
}

// NewGateService constructs a [GateService]. A bcryptCost of zero selects
// the bcrypt library default.
func NewGateService(verifiers store.VerifierRepository, bcryptCost int, log *logger.Logger) GateService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	log.Debug().Int("bcrypt_cost", bcryptCost).Msg("creating gate service")
	return &gateService{
		verifiers:  verifiers,
		bcryptCost: bcryptCost,
		logger:     log,
	}
}

// HasVerifier implements [GateService].
func (g *gateService) HasVerifier(ctx context.Context, ownerID string) (bool, error) {
	_, err := g.verifiers.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrVerifierNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SetVerifier implements [GateService].
func (g *gateService) SetVerifier(ctx context.Context, ownerID string, secret string) (keychain.Strength, error) {
	log := logger.FromContext(ctx)

	strength, err := keychain.CheckStrength(secret)
	if err != nil {
		return keychain.Strength{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), g.bcryptCost)
	if err != nil {
		log.Err(err).
			Str("func", "gateService.SetVerifier").
			Str("owner_id", ownerID).
			Msg("failed to hash master secret")
		return keychain.Strength{}, fmt.Errorf("hashing master secret: %w", err)
	}

	if _, err = g.verifiers.Create(ctx, g.newVerifier(ownerID, hash)); err != nil {
		return keychain.Strength{}, err
	}

	if strength.Weak {
		log.Warn().
			Str("func", "gateService.SetVerifier").
			Str("owner_id", ownerID).
			Int("score", strength.Score).
			Msg("weak master secret accepted")
	}

	return strength, nil
}

// Verify implements [GateService].
func (g *gateService) Verify(ctx context.Context, ownerID string, secret string) (bool, error) {
	verifier, err := g.verifiers.Get(ctx, ownerID)
	if err != nil {
		return false, err
	}

	compareErr := bcrypt.CompareHashAndPassword([]byte(verifier.SecretHash), []byte(secret))
	if compareErr != nil {
		if errors.Is(compareErr, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("comparing master secret: %w", compareErr)
	}

	return true, nil
}

// Rekey implements [GateService]. Proof of the old secret comes first, so
// a failed rekey leaves the stored verifier byte-for-byte unchanged.
func (g *gateService) Rekey(ctx context.Context, ownerID string, oldSecret string, newSecret string) (keychain.Strength, error) {
	log := logger.FromContext(ctx)

	valid, err := g.Verify(ctx, ownerID, oldSecret)
	if err != nil {
		return keychain.Strength{}, err
	}
	if !valid {
		return keychain.Strength{}, ErrWrongSecret
	}

	strength, err := keychain.CheckStrength(newSecret)
	if err != nil {
		return keychain.Strength{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newSecret), g.bcryptCost)
	if err != nil {
		log.Err(err).
			Str("func", "gateService.Rekey").
			Str("owner_id", ownerID).
			Msg("failed to hash new master secret")
		return keychain.Strength{}, fmt.Errorf("hashing master secret: %w", err)
	}

	if _, err = g.verifiers.UpdateHash(ctx, ownerID, string(hash)); err != nil {
		return keychain.Strength{}, err
	}

	log.Info().
		Str("func", "gateService.Rekey").
		Str("owner_id", ownerID).
		Msg("master secret verifier rotated")

	return strength, nil
}

func (g *gateService) newVerifier(ownerID string, hash []byte) models.Verifier {
	return models.Verifier{
		OwnerID:    ownerID,
		SecretHash: string(hash),
	}
}
