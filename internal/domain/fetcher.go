package domain

import "context"

// FeedFetcher retrieves the current feed snapshot. Implementations must
// return either a complete snapshot or an error, never a partial one.
type FeedFetcher interface {
	Fetch(ctx context.Context) (FeedSnapshot, error)
}
