package keychain

import (
	"fmt"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// MinSecretLength is the hard lower bound on master secret length.
// Secrets shorter than this are rejected outright; everything at or above
// it is accepted, weak or not.
const MinSecretLength = 8

// weakScoreThreshold is the zxcvbn score (0..4) below which a secret is
// flagged weak.
const weakScoreThreshold = 2

// Strength is the result of scoring a master secret.
type Strength struct {
	// Score is the zxcvbn score on a 0 (guessable) to 4 (strong) scale.
	Score int

	// CharacterClasses counts the distinct classes present
	// (lower, upper, digit, other).
	CharacterClasses int

	// Weak is true when the secret scored below the strength threshold.
	// A weak secret is accepted and flagged — usability over enforcement.
	// Callers must not upgrade the flag to a hard block.
	Weak bool
}

// CheckStrength applies the shared secret-strength policy.
//
// A secret shorter than MinSecretLength fails with ErrWeakSecret. Any
// longer secret passes; zxcvbn scoring and character-class diversity only
// populate the advisory Strength report.
func CheckStrength(secret string) (Strength, error) {
	if len(secret) < MinSecretLength {
		return Strength{}, fmt.Errorf("%w: shorter than %d characters", ErrWeakSecret, MinSecretLength)
	}

	score := zxcvbn.PasswordStrength(secret, nil).Score
	classes := countCharacterClasses(secret)

	return Strength{
		Score:            score,
		CharacterClasses: classes,
		Weak:             score < weakScoreThreshold,
	}, nil
}

func countCharacterClasses(s string) int {
	var lower, upper, digit, other bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			other = true
		}
	}

	count := 0
	for _, present := range []bool{lower, upper, digit, other} {
		if present {
			count++
		}
	}
	return count
}
