// Package httpapi exposes the services over HTTP/JSON. Handlers stay thin:
// decode, validate, call the service, map the error taxonomy to a status.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"notemint/internal/logging"
	"notemint/internal/server/config"
	"notemint/internal/server/services"
)

// Services bundles everything the router exposes.
type Services struct {
	Notes    *services.NoteService
	Nfts     *services.NftService
	Market   *services.MarketService
	Keys     *services.KeysService
	Profiles *services.ProfileService
	Limits   *services.LimitsService
}

// NewRouter builds the full route table with auth and logging middleware.
func NewRouter(svcs Services, cfg *config.Config, log logging.Logger) *mux.Router {
	notes := NewNotesHandler(svcs.Notes)
	nfts := NewNftsHandler(svcs.Nfts, svcs.Market)
	keys := NewKeysHandler(svcs.Keys)
	profiles := NewProfilesHandler(svcs.Profiles)
	admin := NewAdminHandler(svcs.Limits)

	r := mux.NewRouter()
	r.Use(LoggingMiddleware(log))
	r.Use(AuthMiddleware([]byte(cfg.SecretKey)))

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/notes", notes.Create).Methods(http.MethodPost)
	api.HandleFunc("/notes", notes.List).Methods(http.MethodGet)
	api.HandleFunc("/notes/mine", notes.ListMine).Methods(http.MethodGet)
	api.HandleFunc("/notes/shared", notes.ListShared).Methods(http.MethodGet)
	api.HandleFunc("/notes/count", notes.Count).Methods(http.MethodGet)
	api.HandleFunc("/notes/{id:[0-9]+}", notes.Get).Methods(http.MethodGet)
	api.HandleFunc("/notes/{id:[0-9]+}", notes.Update).Methods(http.MethodPut)
	api.HandleFunc("/notes/{id:[0-9]+}", notes.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/notes/{id:[0-9]+}/share", notes.Share).Methods(http.MethodPost)
	api.HandleFunc("/notes/{id:[0-9]+}/unshare", notes.Unshare).Methods(http.MethodPost)
	api.HandleFunc("/notes/{id:[0-9]+}/key", keys.DeriveNoteKey).Methods(http.MethodPost)

	api.HandleFunc("/keys/verification", keys.VerificationKey).Methods(http.MethodGet)

	api.HandleFunc("/nfts", nfts.Mint).Methods(http.MethodPost)
	api.HandleFunc("/nfts/mine", nfts.ListMine).Methods(http.MethodGet)
	api.HandleFunc("/nfts/for-sale", nfts.ListForSale).Methods(http.MethodGet)
	api.HandleFunc("/nfts/owned-by/{principal}", nfts.OwnedBy).Methods(http.MethodGet)
	api.HandleFunc("/nfts/{id:[0-9]+}", nfts.Get).Methods(http.MethodGet)
	api.HandleFunc("/nfts/{id:[0-9]+}/owner", nfts.Owner).Methods(http.MethodGet)
	api.HandleFunc("/nfts/{id:[0-9]+}/listing", nfts.UpdateListing).Methods(http.MethodPut)
	api.HandleFunc("/nfts/{id:[0-9]+}/transfer", nfts.Transfer).Methods(http.MethodPost)
	api.HandleFunc("/nfts/{id:[0-9]+}/buy", nfts.Buy).Methods(http.MethodPost)

	api.HandleFunc("/market/balance", nfts.Balance).Methods(http.MethodGet)

	api.HandleFunc("/profiles", profiles.Set).Methods(http.MethodPost, http.MethodPut)
	api.HandleFunc("/profiles/count", profiles.Count).Methods(http.MethodGet)
	api.HandleFunc("/profiles/username-available", profiles.UsernameAvailable).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{principal}", profiles.Get).Methods(http.MethodGet)

	api.HandleFunc("/admin/max-note-size", admin.GetMaxNoteSize).Methods(http.MethodGet)
	api.HandleFunc("/admin/max-note-size", admin.SetMaxNoteSize).Methods(http.MethodPut)

	api.HandleFunc("/whoami", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"principal": string(CallerPrincipal(r))})
	}).Methods(http.MethodGet)

	return r
}

const shutdownTimeout = 10 * time.Second

// Server wraps http.Server with graceful shutdown.
type Server struct {
	srv *http.Server
	log logging.Logger
}

func NewServer(addr string, handler http.Handler, log logging.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "http server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info(ctx, "http server shutting down")
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
