package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/smartb3/smartb3/internal/dashboard"
	"github.com/smartb3/smartb3/internal/datasource"
	"github.com/smartb3/smartb3/internal/viewmodel"
	"github.com/smartb3/smartb3/pkg/models"
	"github.com/smartb3/smartb3/pkg/utils"
)

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version,omitempty"`
	Backend      string `json:"backend"`
	MarketStatus string `json:"market_status"`
	Uptime       string `json:"uptime"`
	WSClients    int    `json:"ws_clients"`
	Time         string `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: HealthResponse{
			Status:       "ok",
			Version:      s.version,
			Backend:      s.cfg.Backend.BaseURL,
			MarketStatus: utils.MarketStatus(),
			Uptime:       time.Since(s.started).Round(time.Second).String(),
			WSClients:    s.wsHub.ClientCount(),
			Time:         utils.FormatDateTimeBRT(time.Now()),
		},
	})
}

// ============================================================
// Catalog handlers
// ============================================================

// ensureCatalog loads the company and sector lists on first use and
// again while either of them is still missing.
func (s *Server) ensureCatalog(ctx context.Context) error {
	if len(s.orch.Companies()) > 0 && s.orch.Sectors() != nil {
		return nil
	}
	return s.orch.LoadCatalog(ctx)
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	if err := s.ensureCatalog(r.Context()); err != nil && len(s.orch.Companies()) == 0 {
		writeError(w, statusFor(err), "failed to load companies: "+err.Error())
		return
	}

	companies := s.orch.Companies()
	if sector := r.URL.Query().Get("sector"); sector != "" {
		companies = models.CompaniesInSector(companies, sector)
	}
	if companies == nil {
		companies = []models.Company{}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: companies})
}

func (s *Server) handleSectors(w http.ResponseWriter, r *http.Request) {
	if err := s.ensureCatalog(r.Context()); err != nil && s.orch.Sectors() == nil {
		writeError(w, statusFor(err), "failed to load sectors: "+err.Error())
		return
	}
	sectors := s.orch.Sectors()
	if sectors == nil {
		sectors = []string{}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: sectors})
}

// ============================================================
// Selection handlers
// ============================================================

// SelectRequest is the body for POST /api/v1/select.
type SelectRequest struct {
	Ticker      string `json:"ticker"`
	FromSidebar bool   `json:"from_sidebar,omitempty"`
}

// SectorRequest is the body for POST /api/v1/sector.
type SectorRequest struct {
	Sector string `json:"sector"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if err := s.ensureCatalog(r.Context()); err != nil && len(s.orch.Companies()) == 0 {
		writeError(w, statusFor(err), "failed to load companies: "+err.Error())
		return
	}

	suggestions := s.orch.SetSearchText(r.URL.Query().Get("q"))
	if suggestions == nil {
		suggestions = []models.Company{}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: suggestions})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ticker := utils.NormalizeTicker(req.Ticker)
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	if !utils.IsValidTicker(ticker) {
		writeError(w, http.StatusBadRequest, "invalid ticker "+ticker)
		return
	}
	if err := s.ensureCatalog(r.Context()); err != nil && len(s.orch.Companies()) == 0 {
		writeError(w, statusFor(err), "failed to load companies: "+err.Error())
		return
	}

	if _, err := s.orch.SelectTicker(ticker, req.FromSidebar); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: viewmodel.Build(s.orch.Snapshot())})
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	s.orch.ClearSelection()
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: viewmodel.Build(s.orch.Snapshot())})
}

func (s *Server) handleSelectSector(w http.ResponseWriter, r *http.Request) {
	var req SectorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Sector == "" {
		writeError(w, http.StatusBadRequest, "sector is required")
		return
	}

	s.orch.SelectSector(req.Sector)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: viewmodel.Build(s.orch.Snapshot())})
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	field, err := dashboard.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.orch.Retry(field); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, APIResponse{Success: true, Data: viewmodel.Build(s.orch.Snapshot())})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: viewmodel.Build(s.orch.Snapshot())})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case datasource.IsMissing(err):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrNoSelection):
		return http.StatusConflict
	case errors.Is(err, dashboard.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case datasource.IsFetchError(err), errors.Is(err, datasource.ErrInvalidPayload):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
