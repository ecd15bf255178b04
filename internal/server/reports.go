package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lazypower/brickdecay/internal/decay"
	"github.com/lazypower/brickdecay/internal/store"
)

type reportRequest struct {
	ContentType string `json:"contentType" validate:"required"`
	Quality     string `json:"quality"`
	Width       int    `json:"width" validate:"gt=0,max=10000"`
	Height      int    `json:"height" validate:"gt=0,max=10000"`
	Depth       int    `json:"depth" validate:"gte=0,max=10000"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	save := r.URL.Query().Get("save") == "true"
	if save && s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "report history not configured")
		return
	}

	ct := s.contentType(req.ContentType)
	report, err := decay.GenerateReport(decay.ReportParams{
		ContentType: ct,
		Quality:     s.quality(req.Quality),
		Width:       req.Width,
		Height:      req.Height,
		Depth:       req.Depth,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := http.StatusOK
	if save {
		if err := s.db.SaveReport(&report); err != nil {
			s.logger.Error("save report", zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		status = http.StatusCreated
	}
	s.metrics.reports.WithLabelValues(string(ct), strconv.FormatBool(save)).Inc()

	writeJSON(w, status, report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "report history not configured")
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	reports, err := s.db.ListReports(limit, r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if reports == nil {
		reports = []store.ReportSummary{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(reports),
		"reports": reports,
	})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "report history not configured")
		return
	}

	id := chi.URLParam(r, "reportID")
	report, err := s.db.GetReport(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "report history not configured")
		return
	}

	id := chi.URLParam(r, "reportID")
	deleted, err := s.db.DeleteReport(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
