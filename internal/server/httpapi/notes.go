package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"notemint/internal/common"
	"notemint/internal/server/models"
	"notemint/internal/server/services"
)

type NotesHandler struct {
	notes    *services.NoteService
	validate *validator.Validate
}

func NewNotesHandler(notes *services.NoteService) *NotesHandler {
	return &NotesHandler{notes: notes, validate: validator.New()}
}

func pathID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id", common.ErrorValidation)
	}
	return id, nil
}

func decodeValid(r *http.Request, validate *validator.Validate, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request payload", common.ErrorValidation)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return nil
}

func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := decodeValid(r, h.validate, &req); err != nil {
		writeError(w, err)
		return
	}

	id, err := h.notes.Create(r.Context(), CallerPrincipal(r), req.Encrypted)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.ReadAllAccessible(r.Context(), CallerPrincipal(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNoteResponses(notes))
}

func (h *NotesHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.MyNotes(r.Context(), CallerPrincipal(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNoteResponses(notes))
}

func (h *NotesHandler) ListShared(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.SharedNotes(r.Context(), CallerPrincipal(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNoteResponses(notes))
}

func (h *NotesHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.notes.NoteCount(r.Context(), CallerPrincipal(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *NotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	note, err := h.notes.Get(r.Context(), CallerPrincipal(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNoteResponse(note))
}

func (h *NotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateNoteRequest
	if err := decodeValid(r, h.validate, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.notes.Update(r.Context(), CallerPrincipal(r), id, req.Encrypted); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "note updated"})
}

func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.notes.Delete(r.Context(), CallerPrincipal(r), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "note deleted"})
}

func (h *NotesHandler) Share(w http.ResponseWriter, r *http.Request) {
	h.changeShare(w, r, h.notes.Share, "note shared")
}

func (h *NotesHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	h.changeShare(w, r, h.notes.Unshare, "note unshared")
}

func (h *NotesHandler) changeShare(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, caller models.Principal, id uint64, grantee models.Principal, level models.ShareLevel) error,
	message string) {

	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req shareRequest
	if err := decodeValid(r, h.validate, &req); err != nil {
		writeError(w, err)
		return
	}

	err = op(r.Context(), CallerPrincipal(r), id, models.Principal(req.User), models.ShareLevel(req.Level))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}
