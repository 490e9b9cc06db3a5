package httpapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"notemint/internal/server/services"
)

type KeysHandler struct {
	keys     *services.KeysService
	validate *validator.Validate
}

func NewKeysHandler(keys *services.KeysService) *KeysHandler {
	return &KeysHandler{keys: keys, validate: validator.New()}
}

func (h *KeysHandler) DeriveNoteKey(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req keyRequest
	if err := decodeValid(r, h.validate, &req); err != nil {
		writeError(w, err)
		return
	}

	key, err := h.keys.DeriveNoteKey(r.Context(), CallerPrincipal(r), id, req.TransportPublicKey)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"encrypted_key": key})
}

func (h *KeysHandler) VerificationKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.keys.VerificationKey(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"verification_key": key})
}
