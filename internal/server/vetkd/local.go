package vetkd

import (
	"context"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// LocalDeriver is an insecure stand-in for the external vetKD service, meant
// for local development and tests. Keys are derived deterministically from a
// master secret via HKDF-SHA256; the "encryption" to the transport key is a
// plain HKDF binding, so a LocalDeriver must never serve real ciphertexts.
type LocalDeriver struct {
	masterSecret []byte
}

func NewLocalDeriver(masterSecret []byte) *LocalDeriver {
	return &LocalDeriver{masterSecret: masterSecret}
}

func (d *LocalDeriver) PublicKey(_ context.Context, derivationContext []byte) ([]byte, error) {
	return d.expand(derivationContext, []byte("verification-key"))
}

func (d *LocalDeriver) DeriveKey(_ context.Context, input, derivationContext, transportPublicKey []byte) ([]byte, error) {
	info := make([]byte, 0, len(input)+len(transportPublicKey))
	info = append(info, input...)
	info = append(info, transportPublicKey...)
	return d.expand(derivationContext, info)
}

func (d *LocalDeriver) expand(salt, info []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, d.masterSecret, salt, info)
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}
