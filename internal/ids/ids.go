// Package ids выдаёт идентификаторы сущностей.
package ids

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Префиксы идентификаторов, как их видят пользователи.
const (
	PrefixDonor    = "D"
	PrefixRequest  = "R"
	PrefixDonation = "DON"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// New возвращает монотонно возрастающий идентификатор с указанным префиксом.
func New(prefix string) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return prefix + ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
