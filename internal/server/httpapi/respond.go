package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"notemint/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusForError maps the service error taxonomy onto HTTP statuses. The
// message sent to the client is the error's own text; internal failures are
// masked.
func statusForError(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrNftPriceInvalid),
		errors.Is(err, common.ErrPriceBelowFee),
		errors.Is(err, common.ErrUsernameEmpty):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorAnonymous),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden),
		errors.Is(err, common.ErrKeyReleaseDenied):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrNoteHasNft),
		errors.Is(err, common.ErrNftNotListed),
		errors.Is(err, common.ErrPurchaseConflict),
		errors.Is(err, common.ErrUsernameTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)

	var fee *common.FeeTransferError
	if errors.As(err, &fee) {
		// Partial settlement is surfaced verbatim so the client knows the
		// seller payment went through.
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = common.ErrorInternal.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
