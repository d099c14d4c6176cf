// Package audit provides audit field enrichment for domain entities.
package audit

import (
	"context"

	appctx "stockledger/internal/core/context"
)

// EnrichCreatedBy sets *createdBy to the caller's user ID when it is still
// empty. Without an authenticated caller it is a no-op.
func EnrichCreatedBy(ctx context.Context, createdBy *string) {
	userID := appctx.GetUserID(ctx)
	if userID == "" || createdBy == nil || *createdBy != "" {
		return
	}
	*createdBy = userID
}
