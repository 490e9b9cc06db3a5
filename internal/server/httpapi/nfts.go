package httpapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"notemint/internal/server/models"
	"notemint/internal/server/services"
)

type NftsHandler struct {
	nfts     *services.NftService
	market   *services.MarketService
	validate *validator.Validate
}

func NewNftsHandler(nfts *services.NftService, market *services.MarketService) *NftsHandler {
	return &NftsHandler{nfts: nfts, market: market, validate: validator.New()}
}

func (h *NftsHandler) Mint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := decodeValid(r, h.validate, &req); err != nil {
		writeError(w, err)
		return
	}

	id, err := h.nfts.Mint(r.Context(), CallerPrincipal(r), req.NoteID,
		req.Title, req.Description, req.CiphertextHash, req.PriceSats)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

func (h *NftsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	nft, err := h.nfts.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNftResponse(nft))
}

func (h *NftsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	nfts, err := h.nfts.ListMine(r.Context(), CallerPrincipal(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNftResponses(nfts))
}

func (h *NftsHandler) ListForSale(w http.ResponseWriter, r *http.Request) {
	nfts, err := h.nfts.ListForSale(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNftResponses(nfts))
}

func (h *NftsHandler) Owner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	owner, err := h.nfts.OwnerOf(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"owner": string(owner)})
}

func (h *NftsHandler) OwnedBy(w http.ResponseWriter, r *http.Request) {
	owner := models.Principal(mux.Vars(r)["principal"])

	ids, err := h.nfts.TokensOf(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]uint64{"ids": ids})
}

func (h *NftsHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req listingRequest
	if err := decodeValid(r, h.validate, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.nfts.UpdateListing(r.Context(), CallerPrincipal(r), id, req.Listed, req.PriceSats); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "listing updated"})
}

func (h *NftsHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req transferRequest
	if err := decodeValid(r, h.validate, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.nfts.Transfer(r.Context(), CallerPrincipal(r), id, models.Principal(req.To)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "NFT transferred"})
}

func (h *NftsHandler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.market.Balance(r.Context(), CallerPrincipal(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"balance_sats": balance})
}

func (h *NftsHandler) Buy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	receipt, err := h.market.Buy(r.Context(), CallerPrincipal(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
