package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching verification outcomes.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from the model and the relationship
// content. Two records with different ids but identical content map to
// the same key, so duplicate rows do not trigger a second paid call.
func Key(model, entity, relation, related string) string {
	h := sha256.Sum256([]byte(strings.Join([]string{model, entity, relation, related}, "\x1f")))
	return "relvet:v1:" + hex.EncodeToString(h[:])
}
