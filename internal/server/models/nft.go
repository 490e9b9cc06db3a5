package models

import "time"

// Nft wraps a note into a sellable token. Title, description and pointer are
// plaintext metadata; the note content itself stays encrypted.
//
// Price is in sats and is non-nil iff Listed is true.
type Nft struct {
	ID                uint64
	NoteID            uint64
	Owner             Principal
	Title             string
	Description       string
	Pointer           string
	Encrypted         bool
	CiphertextHashHex string
	Listed            bool
	Price             *uint64
	CreatedAt         time.Time
}
