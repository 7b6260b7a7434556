package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jpcardenas/archivador/internal/catalog"
	"github.com/jpcardenas/archivador/internal/importer"
	"github.com/jpcardenas/archivador/internal/logging"
	"github.com/jpcardenas/archivador/internal/records"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// profileInfo is the listing shape for GET /api/profiles.
type profileInfo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	all := importer.All()
	infos := make([]profileInfo, 0, len(all))
	for _, p := range all {
		infos = append(infos, profileInfo{Key: p.Key, Name: p.Name})
	}
	respondJSON(w, r, http.StatusOK, infos)
}

// lookupsFor preloads the catalog maps a profile resolves against.
func (s *Server) lookupsFor(r *http.Request, key string) (*catalog.Lookups, error) {
	switch key {
	case "inventory-records":
		return s.catalog.PreloadInventoryLookups(r.Context())
	case "administrative-acts":
		return s.catalog.PreloadActLookups(r.Context())
	case "users":
		return s.catalog.PreloadUserLookups(r.Context())
	default:
		return nil, fmt.Errorf("no lookups for profile %q", key)
	}
}

// creatorFor binds a profile to its commit path.
func (s *Server) creatorFor(key string) (importer.CreateFunc, error) {
	switch key {
	case "inventory-records":
		return importer.InventoryCreate(s.inventory, 0), nil
	case "administrative-acts":
		return importer.ActCreate(s.acts, 0), nil
	case "users":
		return importer.UserCreate(s.users), nil
	default:
		return nil, fmt.Errorf("no creator for profile %q", key)
	}
}

func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "profileKey")
	p, ok := importer.Get(key)
	if !ok {
		respondError(w, r, http.StatusNotFound, "unknown import profile: "+key)
		return
	}
	lookups, err := s.lookupsFor(r, key)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	f, err := s.engine.Template(p, lookups)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+key+`.xlsx"`)
	if err := f.Write(w); err != nil {
		logging.FromContext(r.Context()).Error("write template", "profile", key, "error", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "profileKey")
	p, ok := importer.Get(key)
	if !ok {
		respondError(w, r, http.StatusNotFound, "unknown import profile: "+key)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "missing or oversized file upload: "+err.Error())
		return
	}
	defer file.Close()

	lookups, err := s.lookupsFor(r, key)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	create, err := s.creatorFor(key)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	start := time.Now()
	res, err := s.engine.Run(r.Context(), p, lookups, file, create)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	logging.FromContext(r.Context()).Info("import finished",
		"profile", key,
		"file", header.Filename,
		"success", res.Success,
		"errors", res.Errors,
		"duration", time.Since(start),
	)
	respondJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleNextReferenceCode(w http.ResponseWriter, r *http.Request) {
	unitID, err := optionalID(r, "organizational_unit_id")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	code, err := s.inventory.PreviewReferenceCode(r.Context(), unitID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"reference_code": code})
}

func (s *Server) handleNextFilingNumber(w http.ResponseWriter, r *http.Request) {
	act := records.AdministrativeAct{}
	var err error
	if act.OrganizationalUnitID, err = optionalID(r, "organizational_unit_id"); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if act.DocumentarySeriesID, err = optionalID(r, "documentary_series_id"); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if act.DocumentarySubseriesID, err = optionalID(r, "documentary_subseries_id"); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if v := r.URL.Query().Get("vigencia"); v != "" {
		act.Vigencia, err = strconv.Atoi(v)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "vigencia must be a year")
			return
		}
	}
	number, err := s.acts.PreviewFilingNumber(r.Context(), &act)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"filing_number": number})
}

// createRecordRequest is the JSON body for POST /api/records.
type createRecordRequest struct {
	OrganizationalUnitID   *int64     `json:"organizational_unit_id"`
	DocumentarySeriesID    *int64     `json:"documentary_series_id"`
	DocumentarySubseriesID *int64     `json:"documentary_subseries_id"`
	DocumentaryClassID     *int64     `json:"documentary_class_id"`
	DocumentTypeID         *int64     `json:"document_type_id"`
	Title                  string     `json:"title"`
	Description            *string    `json:"description"`
	StartDate              *time.Time `json:"start_date"`
	EndDate                *time.Time `json:"end_date"`
	Box                    *string    `json:"box"`
	Folder                 *string    `json:"folder"`
	Volume                 *string    `json:"volume"`
	Folios                 int        `json:"folios"`
	StorageMediumID        *int64     `json:"storage_medium_id"`
	DocumentPurposeID      *int64     `json:"document_purpose_id"`
	ProcessTypeID          *int64     `json:"process_type_id"`
	ValidityStatusID       *int64     `json:"validity_status_id"`
	PriorityLevelID        *int64     `json:"priority_level_id"`
	ProjectID              *int64     `json:"project_id"`
	Notes                  *string    `json:"notes"`
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Title == "" {
		respondError(w, r, http.StatusBadRequest, "title is required")
		return
	}
	if req.Folios < 0 {
		respondError(w, r, http.StatusBadRequest, "folios must not be negative")
		return
	}
	rec := &records.InventoryRecord{
		OrganizationalUnitID:   req.OrganizationalUnitID,
		DocumentarySeriesID:    req.DocumentarySeriesID,
		DocumentarySubseriesID: req.DocumentarySubseriesID,
		DocumentaryClassID:     req.DocumentaryClassID,
		DocumentTypeID:         req.DocumentTypeID,
		Title:                  req.Title,
		Description:            req.Description,
		StartDate:              req.StartDate,
		EndDate:                req.EndDate,
		HasStartDate:           req.StartDate != nil,
		HasEndDate:             req.EndDate != nil,
		Box:                    req.Box,
		Folder:                 req.Folder,
		Volume:                 req.Volume,
		Folios:                 req.Folios,
		StorageMediumID:        req.StorageMediumID,
		DocumentPurposeID:      req.DocumentPurposeID,
		ProcessTypeID:          req.ProcessTypeID,
		ValidityStatusID:       req.ValidityStatusID,
		PriorityLevelID:        req.PriorityLevelID,
		ProjectID:              req.ProjectID,
		Notes:                  req.Notes,
	}
	if rec.StartDate != nil && rec.EndDate != nil && rec.StartDate.After(*rec.EndDate) {
		respondError(w, r, http.StatusBadRequest, "start date must not be after end date")
		return
	}
	if err := s.inventory.Create(r.Context(), rec, 0); err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, map[string]any{
		"id":             rec.ID,
		"reference_code": rec.ReferenceCode,
	})
}

// createActRequest is the JSON body for POST /api/acts.
type createActRequest struct {
	UserID                 *int64  `json:"user_id"`
	OrganizationalUnitID   *int64  `json:"organizational_unit_id"`
	ActClassificationID    *int64  `json:"act_classification_id"`
	DocumentarySeriesID    *int64  `json:"documentary_series_id"`
	DocumentarySubseriesID *int64  `json:"documentary_subseries_id"`
	Vigencia               int     `json:"vigencia"`
	Subject                string  `json:"subject"`
	Folios                 int     `json:"folios"`
	Notes                  *string `json:"notes"`
}

func (s *Server) handleCreateAct(w http.ResponseWriter, r *http.Request) {
	var req createActRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Subject == "" {
		respondError(w, r, http.StatusBadRequest, "subject is required")
		return
	}
	act := &records.AdministrativeAct{
		UserID:                 req.UserID,
		OrganizationalUnitID:   req.OrganizationalUnitID,
		ActClassificationID:    req.ActClassificationID,
		DocumentarySeriesID:    req.DocumentarySeriesID,
		DocumentarySubseriesID: req.DocumentarySubseriesID,
		Vigencia:               req.Vigencia,
		Subject:                req.Subject,
		Folios:                 req.Folios,
		Notes:                  req.Notes,
	}
	if err := s.acts.Create(r.Context(), act, 0); err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, map[string]any{
		"id":            act.ID,
		"filing_number": act.FilingNumber,
		"slug":          act.Slug,
		"vigencia":      act.Vigencia,
	})
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if r.URL.Query().Get("force") == "true" {
		err = s.inventory.ForceDelete(r.Context(), id)
	} else {
		err = s.inventory.SoftDelete(r.Context(), id, 0)
	}
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestoreRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.inventory.Restore(r.Context(), id, 0); err != nil {
		respondStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if r.URL.Query().Get("force") == "true" {
		err = s.acts.ForceDelete(r.Context(), id)
	} else {
		err = s.acts.SoftDelete(r.Context(), id, 0)
	}
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestoreAct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.acts.Restore(r.Context(), id, 0); err != nil {
		respondStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func optionalID(r *http.Request, param string) (*int64, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid %s %q", param, raw)
	}
	return &id, nil
}
