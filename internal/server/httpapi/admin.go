package httpapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"notemint/internal/server/services"
)

type AdminHandler struct {
	limits   *services.LimitsService
	validate *validator.Validate
}

func NewAdminHandler(limits *services.LimitsService) *AdminHandler {
	return &AdminHandler{limits: limits, validate: validator.New()}
}

func (h *AdminHandler) GetMaxNoteSize(w http.ResponseWriter, r *http.Request) {
	size, err := h.limits.MaxNoteSize(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"max_note_size":      size,
		"safe_max_note_size": h.limits.SafeMaxNoteSize(),
	})
}

func (h *AdminHandler) SetMaxNoteSize(w http.ResponseWriter, r *http.Request) {
	var req maxNoteSizeRequest
	if err := decodeValid(r, h.validate, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.limits.SetMaxNoteSize(r.Context(), CallerPrincipal(r), req.Size); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "note size limit updated"})
}
