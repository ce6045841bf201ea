package keychain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// Character classes the generator draws from.
const (
	lowerChars   = "abcdefghijklmnopqrstuvwxyz"
	upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars   = "0123456789"
	specialChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_{|}~`"
)

// GeneratorOptions selects the character classes and length of a generated
// password. The zero value is not usable; see DefaultGeneratorOptions.
type GeneratorOptions struct {
	Length   int
	Upper    bool
	Digits   bool
	Specials bool
}

// DefaultGeneratorOptions returns the generator settings used when the
// caller has no preference: 20 characters drawn from all four classes.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		Length:   20,
		Upper:    true,
		Digits:   true,
		Specials: true,
	}
}

// GeneratePassword produces a random password from the OS CSPRNG.
//
// Lowercase letters are always included; the options toggle the remaining
// classes. Every enabled class is guaranteed at least one occurrence so
// generated passwords always pass character-class policies of the sites
// they are used on.
func GeneratePassword(opts GeneratorOptions) (string, error) {
	if opts.Length < MinSecretLength {
		return "", errors.New("generated password length below minimum")
	}

	alphabet := lowerChars
	required := []string{lowerChars}
	if opts.Upper {
		alphabet += upperChars
		required = append(required, upperChars)
	}
	if opts.Digits {
		alphabet += digitChars
		required = append(required, digitChars)
	}
	if opts.Specials {
		alphabet += specialChars
		required = append(required, specialChars)
	}

	if len(required) > opts.Length {
		return "", errors.New("length too short for requested character classes")
	}

	out := make([]byte, opts.Length)

	// One guaranteed character per enabled class, the rest from the full
	// alphabet, then an unbiased shuffle.
	for i := range out {
		var source string
		if i < len(required) {
			source = required[i]
		} else {
			source = alphabet
		}

		c, err := randomChar(source)
		if err != nil {
			return "", err
		}
		out[i] = c
	}

	for i := len(out) - 1; i > 0; i-- {
		j, err := randomIndex(i + 1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}

	return string(out), nil
}

func randomChar(source string) (byte, error) {
	idx, err := randomIndex(len(source))
	if err != nil {
		return 0, err
	}
	return source[idx], nil
}

func randomIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read random: %w", err)
	}
	return int(v.Int64()), nil
}
