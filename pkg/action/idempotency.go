package action

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

type idempotencyKeyCtx struct{}

// WithIdempotencyKey attaches a key that invokers send as the Idempotency-Key header.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, idempotencyKeyCtx{}, key)
}

// IdempotencyKeyFrom returns the key attached to ctx, if any.
func IdempotencyKeyFrom(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKeyCtx{}).(string)
	return key, ok && key != ""
}

// IdempotencyKey derives a deterministic key for one step of one session.
// Re-driving the same step after a crash yields the same key, so endpoints can deduplicate.
func IdempotencyKey(sessionID string, stepIndex int, actionName string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", sessionID, stepIndex, actionName)))
	return hex.EncodeToString(sum[:16])
}
