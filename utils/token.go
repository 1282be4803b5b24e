package utils

import (
	"fmt"
	"math/rand"
	"time"
)

// NewUniqueID generates an externally visible token such as
// CSO-1712345678901-042 or TRX-1712345678901-913. The millisecond timestamp
// plus a random suffix keeps tokens unique enough for human-facing references;
// the database enforces uniqueness.
func NewUniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d-%03d", prefix, time.Now().UnixMilli(), rand.Intn(1000))
}
