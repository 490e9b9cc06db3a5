package httpapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"notemint/internal/common"
	"notemint/internal/server/models"
	"notemint/internal/server/services"
)

type ProfilesHandler struct {
	profiles *services.ProfileService
	validate *validator.Validate
}

func NewProfilesHandler(profiles *services.ProfileService) *ProfilesHandler {
	return &ProfilesHandler{profiles: profiles, validate: validator.New()}
}

func (h *ProfilesHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeValid(r, h.validate, &req); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.profiles.SetProfile(r.Context(), CallerPrincipal(r), req.Username, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (h *ProfilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	target := models.Principal(mux.Vars(r)["principal"])
	if target == "me" {
		target = CallerPrincipal(r)
	}

	profile, err := h.profiles.GetProfileOf(r.Context(), target)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (h *ProfilesHandler) UsernameAvailable(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		writeError(w, common.ErrUsernameEmpty)
		return
	}

	free, err := h.profiles.UsernameAvailable(r.Context(), CallerPrincipal(r), username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": free})
}

func (h *ProfilesHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.profiles.UserCount(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}
