// Package idgen generates record identifiers.
// Generators are safe for concurrent use.
package idgen

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator generates unique identifiers.
type Generator interface {
	Generate() (uuid.UUID, error)
}

type v4Gen struct{}

// NewV4 returns a Generator producing random UUID v4 values.
func NewV4() Generator { return v4Gen{} }

func (v4Gen) Generate() (uuid.UUID, error) { return uuid.New(), nil }

// v7Gen produces time-ordered UUID v7 values, which keep index locality in
// Postgres. uuid.NewV7 can fail if the entropy source does; a small retry
// budget absorbs transient failures.
type v7Gen struct {
	retries int
}

// NewV7 returns a Generator producing UUID v7 values, retrying up to
// retries additional times on entropy failure.
func NewV7(retries int) Generator {
	if retries < 0 {
		retries = 0
	}
	return &v7Gen{retries: retries}
}

func (g *v7Gen) Generate() (uuid.UUID, error) {
	var last error
	for attempt := 0; attempt <= g.retries; attempt++ {
		id, err := uuid.NewV7()
		if err == nil {
			return id, nil
		}
		last = err
	}
	return uuid.Nil, fmt.Errorf("uuid v7 generation failed after %d attempts: %w", g.retries+1, last)
}
