// Package cache provides the invalidation-oriented key/value store consumed by
// the order and transaction services. Reads go cache-first and fall back to the
// database; writes never patch cached values, they only invalidate, so the next
// read repopulates from the authoritative row.
package cache

import (
	"fmt"
	"time"
)

// TTL tiers. Orders and transactions change often, reference lists rarely.
const (
	TTLFrequent = 2 * time.Minute
	TTLModerate = 15 * time.Minute
)

// Store is the contract the services depend on. Values are opaque byte slices
// (the services cache JSON) so in-process and Redis backends behave the same.
// Implementations must treat internal failures as misses (Get) or no-ops
// (Set/Delete); a cache problem must never fail a mutation that succeeded
// against the database.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
	// DeletePattern removes every key containing the given substring.
	DeletePattern(substr string)
	Flush()
}

// Cache key builders. Single-record keys are exact; list groups share a prefix
// so DeletePattern can drop every variant (search, pagination, sort) at once.

func OrderKey(id uint) string {
	return fmt.Sprintf("custom_order:%d", id)
}

func OrderListKey(suffix string) string {
	return "custom_orders:all:" + suffix
}

func OrderUserListKey(userID uint, suffix string) string {
	return fmt.Sprintf("custom_orders:user:%d:%s", userID, suffix)
}

func TransactionKey(id uint) string {
	return fmt.Sprintf("transaction:%d", id)
}

func TransactionListKey(suffix string) string {
	return "transactions:all:" + suffix
}

func TransactionUserListKey(userID uint, suffix string) string {
	return fmt.Sprintf("transactions:user:%d:%s", userID, suffix)
}

// Pattern fragments used for bulk invalidation.

func OrderListPattern() string {
	return "custom_orders:all"
}

func OrderUserPattern(userID uint) string {
	return fmt.Sprintf("custom_orders:user:%d", userID)
}

func TransactionListPattern() string {
	return "transactions:all"
}

func TransactionUserPattern(userID uint) string {
	return fmt.Sprintf("transactions:user:%d", userID)
}
