package vectorstore

import (
	"crypto/md5"

	"github.com/google/uuid"
)

// NormalizeID maps an arbitrary document id into an id the index engine
// accepts: a valid UUID or an unsigned-integer string. Ids already in either
// form pass through unchanged; anything else is hashed into a fixed-format
// UUID, so the same original id always maps to the same engine id and
// re-upserting overwrites instead of duplicating. NormalizeID never fails.
func NormalizeID(id string) string {
	if _, err := uuid.Parse(id); err == nil {
		return id
	}
	if isUnsignedInt(id) {
		return id
	}
	sum := md5.Sum([]byte(id))
	derived, err := uuid.FromBytes(sum[:])
	if err != nil {
		// unreachable: an md5 digest is always 16 bytes
		return uuid.NewMD5(uuid.NameSpaceOID, []byte(id)).String()
	}
	return derived.String()
}

func isUnsignedInt(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
