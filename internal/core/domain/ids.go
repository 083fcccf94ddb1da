// internal/core/domain/ids.go
package domain

import (
	"strings"

	"github.com/google/uuid"
)

// foreignIDSpace derives stable UUIDs for items whose external id is not a
// UUID.
var foreignIDSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("cultureconnect/items"))

// DeriveID returns raw itself when it is a UUID and otherwise a UUID derived
// from it deterministically, so re-imports and repeated fetches of the same
// item agree on its identity. An empty raw yields uuid.Nil.
func DeriveID(raw string) uuid.UUID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil
	}
	if u, err := uuid.Parse(raw); err == nil {
		return u
	}
	return uuid.NewSHA1(foreignIDSpace, []byte(raw))
}
