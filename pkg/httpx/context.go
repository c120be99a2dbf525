package httpx

import "context"

type ctxKey string

// CtxKeyAccountID carries the authenticated account's ID once identity
// resolution has run. Used by rate limiting and handlers.
const CtxKeyAccountID ctxKey = "account_id"

func accountIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyAccountID).(string); ok {
		return v
	}
	return ""
}
