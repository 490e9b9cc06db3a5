// Package vetkd is the boundary to the verifiable key-derivation service.
// The service releases a per-resource key, encrypted to the requester's
// transport public key, without itself learning the key. Its cryptographic
// internals are out of scope here; this package only carries requests.
package vetkd

import "context"

// ContextNoteSymmetricKey is the domain-separation tag for note keys.
var ContextNoteSymmetricKey = []byte("note_symmetric_key")

type Client interface {
	// PublicKey fetches the verification key for the given context tag.
	PublicKey(ctx context.Context, derivationContext []byte) ([]byte, error)

	// DeriveKey derives the key for input under the context tag and returns
	// it encrypted to transportPublicKey.
	DeriveKey(ctx context.Context, input, derivationContext, transportPublicKey []byte) ([]byte, error)
}
