package types

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID prefixes keep identifiers self-describing in logs and payloads.
const (
	UUID_PREFIX_USER         = "user"
	UUID_PREFIX_SERVICE      = "svc"
	UUID_PREFIX_AGREEMENT    = "agr"
	UUID_PREFIX_BROKER       = "bacc"
	UUID_PREFIX_TICKET       = "tkt"
	UUID_PREFIX_NOTIFICATION = "notif"
	UUID_PREFIX_ENROLLMENT   = "enr"
	UUID_PREFIX_STEPUP_GRANT = "grant"
	UUID_PREFIX_REQUEST      = "req"
)

// GenerateUUID returns a lowercase ULID.
func GenerateUUID() string {
	id := ulid.MustNew(ulid.Timestamp(time.Now().UTC()), ulid.DefaultEntropy())
	return strings.ToLower(id.String())
}

// GenerateUUIDWithPrefix returns a prefixed ULID like "agr_01hx...".
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return prefix + "_" + GenerateUUID()
}

// GenerateSecret returns a URL-safe random string of n characters.
func GenerateSecret(n int) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf)
}
