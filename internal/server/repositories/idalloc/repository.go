// Package idalloc issues unique, monotonically increasing identifiers from
// the single counter shared by notes and NFTs.
package idalloc

import "context"

type Repository interface {
	// NextID returns a value strictly greater than every previously
	// returned value. Gaps are allowed, reuse is not. A failure here is
	// fatal: silent recovery would risk identifier collision.
	NextID(ctx context.Context) (uint64, error)
}
