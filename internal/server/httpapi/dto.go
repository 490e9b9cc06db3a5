package httpapi

import (
	"time"

	"notemint/internal/server/models"
)

// Request DTOs. Validation tags are enforced with go-playground/validator.

type createNoteRequest struct {
	Encrypted string `json:"encrypted" validate:"required"`
}

type updateNoteRequest struct {
	Encrypted string `json:"encrypted" validate:"required"`
}

type shareRequest struct {
	User  string `json:"user" validate:"required"`
	Level string `json:"level" validate:"required,oneof=read edit"`
}

type keyRequest struct {
	TransportPublicKey string `json:"transport_public_key" validate:"required,hexadecimal"`
}

type mintRequest struct {
	NoteID         uint64  `json:"note_id" validate:"required"`
	Title          string  `json:"title" validate:"required"`
	Description    string  `json:"description"`
	CiphertextHash string  `json:"ciphertext_hash" validate:"required,hexadecimal"`
	PriceSats      *uint64 `json:"price_sats"`
}

type listingRequest struct {
	Listed    bool    `json:"listed"`
	PriceSats *uint64 `json:"price_sats"`
}

type transferRequest struct {
	To string `json:"to" validate:"required"`
}

type profileRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type maxNoteSizeRequest struct {
	Size int `json:"size" validate:"required,gt=0"`
}

// Response DTOs. The storage models carry no serialization concerns, so the
// wire shapes live here.

type noteResponse struct {
	ID         uint64   `json:"id"`
	Owner      string   `json:"owner"`
	Encrypted  string   `json:"encrypted"`
	SharedRead []string `json:"shared_read"`
	SharedEdit []string `json:"shared_edit"`
}

func toNoteResponse(n *models.Note) noteResponse {
	return noteResponse{
		ID:         n.ID,
		Owner:      string(n.Owner),
		Encrypted:  n.Encrypted,
		SharedRead: principalsToStrings(n.SharedRead),
		SharedEdit: principalsToStrings(n.SharedEdit),
	}
}

func toNoteResponses(ns []*models.Note) []noteResponse {
	out := make([]noteResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, toNoteResponse(n))
	}
	return out
}

type nftResponse struct {
	ID             uint64    `json:"id"`
	NoteID         uint64    `json:"note_id"`
	Owner          string    `json:"owner"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Pointer        string    `json:"pointer"`
	Encrypted      bool      `json:"encrypted"`
	CiphertextHash string    `json:"ciphertext_hash"`
	Listed         bool      `json:"listed"`
	PriceSats      *uint64   `json:"price_sats,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toNftResponse(n *models.Nft) nftResponse {
	return nftResponse{
		ID:             n.ID,
		NoteID:         n.NoteID,
		Owner:          string(n.Owner),
		Title:          n.Title,
		Description:    n.Description,
		Pointer:        n.Pointer,
		Encrypted:      n.Encrypted,
		CiphertextHash: n.CiphertextHashHex,
		Listed:         n.Listed,
		PriceSats:      n.Price,
		CreatedAt:      n.CreatedAt,
	}
}

func toNftResponses(ns []*models.Nft) []nftResponse {
	out := make([]nftResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, toNftResponse(n))
	}
	return out
}

type profileResponse struct {
	Principal string    `json:"principal"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toProfileResponse(p *models.UserProfile) profileResponse {
	return profileResponse{
		Principal: string(p.ID),
		Username:  p.Username,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
	}
}

func principalsToStrings(ps []models.Principal) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, string(p))
	}
	return out
}
