package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/conorfennell/smartdex/internal/domain"
	"github.com/conorfennell/smartdex/internal/storage"
	"github.com/conorfennell/smartdex/internal/sync"
)

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.db.ListSources(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

type sourceRequest struct {
	Path string `json:"path" validate:"required,max=1024"`
}

// handleCreateSource adds a new source. It is synced on the next sync run.
func (s *Server) handleCreateSource(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := decode(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	path := strings.TrimSpace(req.Path)
	if err := sync.CheckSource(s.opts.Sync.ReposDir, path); err != nil {
		handleError(w, r, err)
		return
	}
	id, err := s.db.InsertSource(r.Context(), path, storage.SourceType(path))
	if err != nil {
		handleError(w, r, err)
		return
	}
	src, err := s.db.FindSource(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, src)
}

func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "sourceID"), 10, 64)
	if err != nil {
		handleError(w, r, fmt.Errorf("%w: invalid source ID", domain.ErrInvalid))
		return
	}
	if err := s.db.DeleteSource(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSync runs a sync in the foreground so the caller gets the
// reports. Only one sync runs at a time.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	select {
	case s.syncing <- struct{}{}:
		defer func() { <-s.syncing }()
	default:
		handleError(w, r, fmt.Errorf("%w: a sync is already running", domain.ErrConflict))
		return
	}

	reports, err := sync.RunSync(r.Context(), s.db, s.opts.Sync)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}
