package store

import (
	"context"
	"time"
)

// Store is the durable persistence contract the export pipeline depends on.
// It offers four primitives: versioned key/value records with optional
// expiry, append-only ordered lists, add-if-absent membership sets, and a
// score-ordered index for recency listings. Single-node transactional
// consistency is assumed; no multi-key transactions are required.
type Store interface {
	// Get returns the value stored under key, or (nil, nil) if the key is
	// absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes value under key, bumping its version. A zero ttl means the
	// record does not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// ListAppend appends items to the ordered list under key in the given
	// order and returns the new list length.
	ListAppend(ctx context.Context, key string, items [][]byte) (int, error)

	// ListRange returns up to limit items starting at offset, in list order.
	// An out-of-range offset returns an empty slice. A negative limit means
	// "to the end of the list".
	ListRange(ctx context.Context, key string, offset, limit int) ([][]byte, error)

	// ListLen returns the number of items in the list under key.
	ListLen(ctx context.Context, key string) (int, error)

	// SetAdd adds member to the set under key and reports whether it was
	// newly added.
	SetAdd(ctx context.Context, key, member string) (bool, error)

	// SetCard returns the cardinality of the set under key.
	SetCard(ctx context.Context, key string) (int, error)

	// IndexAdd adds member with the given score to the index under key,
	// overwriting any previous score.
	IndexAdd(ctx context.Context, key, member string, score float64) error

	// IndexRangeDesc returns up to limit members ordered by score descending.
	IndexRangeDesc(ctx context.Context, key string, limit int) ([]string, error)
}
