// Package settings persists process-wide tunables as key/value pairs.
package settings

import "context"

// KeyMaxNoteSize holds the note payload ceiling in bytes.
const KeyMaxNoteSize = "max_note_size"

type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
