// Package sluggen produces random short-link slugs.
// Generators are safe for concurrent use.
package sluggen

import (
	"crypto/rand"
	"errors"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// maxUnbiased is the largest multiple of len(alphabet) that fits in a byte.
// Bytes at or above it are rejected so every symbol is equally likely.
const maxUnbiased = byte(256 / len(alphabet) * len(alphabet)) // 248

// Generator generates slug candidates. A candidate carries no uniqueness
// guarantee; callers verify against the store and retry on collision.
type Generator interface {
	Generate(length int) (string, error)
}

type alphanumeric struct{}

// NewAlphanumeric returns a Generator drawing uniformly from the 62-symbol
// alphanumeric alphabet (digits, upper, lower).
func NewAlphanumeric() Generator {
	return alphanumeric{}
}

func (alphanumeric) Generate(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("length must be positive")
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= maxUnbiased {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
