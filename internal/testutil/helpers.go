package testutil

import (
	"github.com/brokerdesk/brokerdesk/internal/types"
)

// applyPagination slices items per the query filter's limit and offset.
func applyPagination[T any](items []T, qf *types.QueryFilter) []T {
	if qf == nil || qf.IsUnlimited() {
		return items
	}
	offset := qf.GetOffset()
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit := qf.GetLimit(); limit < len(items) {
		items = items[:limit]
	}
	return items
}
