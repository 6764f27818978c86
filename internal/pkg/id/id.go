// Package id generates the identifiers used as DynamoDB partition keys:
// account, session and notification IDs.
package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a fresh ULID string. ULIDs sort lexicographically by creation
// time, which keeps newest-first listings on the created_at GSIs cheap.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
