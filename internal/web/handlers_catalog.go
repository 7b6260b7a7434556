package web

import (
	"encoding/json"
	"net/http"

	"github.com/jpcardenas/archivador/internal/catalog"
)

// workflowContext reads and validates the required ?context= query
// parameter (fuid or ccd).
func workflowContext(r *http.Request) (catalog.Context, bool) {
	c := catalog.Context(r.URL.Query().Get("context"))
	return c, c.Valid()
}

func (s *Server) handleListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := s.catalog.ActiveUnits(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, r, http.StatusOK, units)
}

func (s *Server) handleListSeries(w http.ResponseWriter, r *http.Request) {
	c, ok := workflowContext(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "context must be fuid or ccd")
		return
	}
	series, err := s.catalog.ActiveSeries(r.Context(), c)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, r, http.StatusOK, series)
}

func (s *Server) handleListSubseries(w http.ResponseWriter, r *http.Request) {
	c, ok := workflowContext(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "context must be fuid or ccd")
		return
	}
	subseries, err := s.catalog.ActiveSubseries(r.Context(), c)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, r, http.StatusOK, subseries)
}

func (s *Server) handleUnitAssignments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	c, ok := workflowContext(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "context must be fuid or ccd")
		return
	}
	assignments, err := s.catalog.AssignmentsForUnit(r.Context(), id, c)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, r, http.StatusOK, assignments)
}

// setSeriesContextRequest is the JSON body for PUT /api/catalog/series/{id}/context.
type setSeriesContextRequest struct {
	Context catalog.Context `json:"context"`
}

func (s *Server) handleSetSeriesContext(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req setSeriesContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if !req.Context.Valid() {
		respondError(w, r, http.StatusBadRequest, "context must be fuid or ccd")
		return
	}
	if err := s.catalog.SetSeriesContext(r.Context(), id, req.Context); err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
