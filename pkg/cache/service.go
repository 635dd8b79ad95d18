package cache

import "time"

// CacheService is the process-local cache shared by settings reads, the
// public fee preview and memoized cart evaluations.
type CacheService interface {
	// Get returns the value and true, or nil and false on a miss.
	Get(key string) (interface{}, bool)

	// Set stores value for duration; zero uses the cache default.
	Set(key string, value interface{}, duration time.Duration)

	Delete(key string)

	// DeletePrefix removes every key starting with prefix and returns how many were removed.
	DeletePrefix(prefix string) int

	Flush()
}

// Cache keys shared between usecases and handlers.
const (
	KeyDangerousGoodsSettings = "settings:dangerous_goods"
	KeyPublicFeeConfig        = "config:dangerous_goods:public"

	EvaluationKeyPrefix = "dg:eval:cart:"
)

// EvaluationKey is the key of the memoized dangerous-goods evaluation of one cart.
func EvaluationKey(cartID string) string {
	return EvaluationKeyPrefix + cartID
}
