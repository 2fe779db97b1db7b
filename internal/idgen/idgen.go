// Package idgen provides short, URL-safe unique record IDs backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the character set used for the random portion of an ID.
const Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Length is the number of random characters generated after the prefix.
const Length = 12

// New returns a new unique ID carrying the given entity prefix, e.g.
// "ds-x1y2...". It panics only on a broken system entropy source, which is
// a programmer/environment error rather than a runtime condition.
func New(prefix string) string {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		panic(fmt.Errorf("idgen: %w", err))
	}
	return prefix + id
}
