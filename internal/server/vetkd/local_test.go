package vetkd

import (
	"bytes"
	"context"
	"testing"
)

func TestLocalDeriver_Deterministic(t *testing.T) {
	d := NewLocalDeriver([]byte("master"))

	k1, err := d.DeriveKey(context.Background(), []byte("note-1"), ContextNoteSymmetricKey, []byte("tpk"))
	if err != nil {
		t.Fatalf("DeriveKey error: %v", err)
	}
	k2, err := d.DeriveKey(context.Background(), []byte("note-1"), ContextNoteSymmetricKey, []byte("tpk"))
	if err != nil {
		t.Fatalf("DeriveKey error: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Fatalf("same input must derive same key")
	}
	if len(k1) != 32 {
		t.Fatalf("key length = %d, want 32", len(k1))
	}
}

func TestLocalDeriver_DistinctInputsDistinctKeys(t *testing.T) {
	d := NewLocalDeriver([]byte("master"))

	k1, _ := d.DeriveKey(context.Background(), []byte("note-1"), ContextNoteSymmetricKey, []byte("tpk"))
	k2, _ := d.DeriveKey(context.Background(), []byte("note-2"), ContextNoteSymmetricKey, []byte("tpk"))
	if bytes.Equal(k1, k2) {
		t.Fatalf("different notes must not share a key")
	}

	k3, _ := d.DeriveKey(context.Background(), []byte("note-1"), ContextNoteSymmetricKey, []byte("other-tpk"))
	if bytes.Equal(k1, k3) {
		t.Fatalf("different transport keys must not share a key")
	}
}

func TestLocalDeriver_PublicKeyStable(t *testing.T) {
	d := NewLocalDeriver([]byte("master"))

	p1, err := d.PublicKey(context.Background(), ContextNoteSymmetricKey)
	if err != nil {
		t.Fatalf("PublicKey error: %v", err)
	}
	p2, _ := d.PublicKey(context.Background(), ContextNoteSymmetricKey)
	if !bytes.Equal(p1, p2) {
		t.Fatalf("verification key must be stable")
	}
}
