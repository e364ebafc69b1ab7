// Package idgen generates the identifiers carried by session events.
package idgen

import (
	"fmt"

	"github.com/google/uuid"
	nanoid "github.com/matoous/go-nanoid/v2"
)

// HashAlphabet is the character set of presenter and participant hashes.
var HashAlphabet = "0123456789abcdef"

// HashLength is the number of characters in a presenter or participant hash.
var HashLength = 32

// KeyLength is the number of characters in a shared session key.
var KeyLength = 21

// StrokeID returns a new stroke uuid in canonical text form.
func StrokeID() string {
	return uuid.NewString()
}

// ParseStrokeID reports whether id is a canonical uuid.
func ParseStrokeID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("idgen: stroke id %q: %w", id, err)
	}
	return u, nil
}

// Hash returns a new hex presenter hash.
func Hash() (string, error) {
	id, err := nanoid.Generate(HashAlphabet, HashLength)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return id, nil
}

// SharedKey returns a new URL-safe session key.
func SharedKey() (string, error) {
	id, err := nanoid.New(KeyLength)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return id, nil
}
