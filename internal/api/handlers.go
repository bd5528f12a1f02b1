package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gosubgroup/app"
	"gosubgroup/domain/core"
	"gosubgroup/domain/run"
	errs "gosubgroup/internal/errors"
	"gosubgroup/ports"
)

// runRequest is the body of POST /api/runs and POST /api/compare
type runRequest struct {
	Dataset     string          `json:"dataset"`
	Target      string          `json:"target"`
	Standardize bool            `json:"standardize"`
	Encode      *app.EncodeSpec `json:"encode,omitempty"`
	Search      json.RawMessage `json:"search,omitempty"`
	Strategies  []string        `json:"strategies,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	req, _, err := s.decodeRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	req.Persist = true

	result, err := s.service.Discover(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	req, strategies, err := s.decodeRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(strategies) == 0 {
		strategies = []string{"beam", "dfs", "best-first"}
	}

	result, err := s.service.Compare(r.Context(), req, strategies)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Dataset string `json:"dataset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, errs.ValidationError("malformed request body: "+err.Error()))
		return
	}
	if body.Dataset == "" {
		s.writeError(w, errs.ValidationError("dataset is required"))
		return
	}
	profile, err := s.service.Profile(r.Context(), s.resolveDataset(body.Dataset))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ports.RunFilters{Strategy: q.Get("strategy"), Limit: 50}
	if status := q.Get("status"); status != "" {
		st := run.Status(status)
		filters.Status = &st
	}
	var err error
	if v := q.Get("limit"); v != "" {
		if filters.Limit, err = strconv.Atoi(v); err != nil || filters.Limit < 1 {
			s.writeError(w, errs.InvalidInput("limit must be a positive integer"))
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if filters.Offset, err = strconv.Atoi(v); err != nil || filters.Offset < 0 {
			s.writeError(w, errs.InvalidInput("offset must be a non-negative integer"))
			return
		}
	}

	runs, err := s.service.ListRuns(r.Context(), filters)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []run.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs, "count": len(runs)})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, errs.ValidationError(err.Error()))
		return
	}
	rn, err := s.service.GetRun(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rn)
}

// decodeRequest applies the body on top of the configured search defaults
func (s *Server) decodeRequest(r *http.Request) (app.DiscoveryRequest, []string, error) {
	var body runRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return app.DiscoveryRequest{}, nil, errs.ValidationError("malformed request body: " + err.Error())
	}
	if body.Dataset == "" {
		return app.DiscoveryRequest{}, nil, errs.ValidationError("dataset is required")
	}

	search := s.defaults
	search.Features = append([]string(nil), s.defaults.Features...)
	if len(body.Search) > 0 {
		if err := json.Unmarshal(body.Search, &search); err != nil {
			return app.DiscoveryRequest{}, nil, errs.ValidationError("malformed search options: " + err.Error())
		}
	}

	return app.DiscoveryRequest{
		Dataset:     s.resolveDataset(body.Dataset),
		Target:      body.Target,
		Standardize: body.Standardize,
		Encode:      body.Encode,
		Search:      search,
	}, body.Strategies, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[API] %v", err)
	} else {
		s.logger.Debug("[API] request rejected: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: errs.GetCode(err)})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
