/*
 * Copyright 2025 the dbparity authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dbparity/dbparity/internal/config"
	"github.com/dbparity/dbparity/internal/runner"
)

// Server exposes the comparison engine as a thin JSON API for the validation
// dashboard. It holds no comparison state; every request resolves to runner
// calls against the configured environments.
type Server struct {
	cfg    *config.Config
	runner *runner.Runner
	log    *zap.Logger
	mux    *http.ServeMux
}

func New(cfg *config.Config, r *runner.Runner, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		runner: r,
		log:    logger,
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("/api/environments", s.handleEnvironments)
	s.mux.HandleFunc("/api/categories", s.handleCategories)
	s.mux.HandleFunc("/api/check-connections", s.handleCheckConnections)
	s.mux.HandleFunc("/api/tables", s.handleTables)
	s.mux.HandleFunc("/api/compare/batch", s.handleCompareBatch)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("api server listening", zap.String("addr", addr))
	return srv.ListenAndServe()
}

func (s *Server) handleEnvironments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"environments": s.cfg.EnvironmentNames()})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": s.cfg.CategoryNames()})
}

// handleCheckConnections mirrors the legacy dashboard contract: the
// environment arrives in the Environment header, and per-side reachability
// comes back with per-side error strings.
func (s *Server) handleCheckConnections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	envName := r.Header.Get("Environment")
	if envName == "" {
		writeError(w, http.StatusBadRequest, "Environment not specified")
		return
	}

	status, err := s.runner.CheckConnections(r.Context(), envName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

type tableEntry struct {
	Name       string   `json:"name"`
	KeyColumns []string `json:"key_columns"`
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	envName := r.URL.Query().Get("environment")
	category := r.URL.Query().Get("category")
	if envName == "" || category == "" {
		writeError(w, http.StatusBadRequest, "Environment and category are required")
		return
	}
	if _, err := s.cfg.Environment(envName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cat, err := s.cfg.Category(category)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tables := make([]tableEntry, 0, len(cat.Tables))
	for _, t := range cat.Tables {
		tables = append(tables, tableEntry{Name: t.Name, KeyColumns: t.KeyColumns})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tables": tables})
}

type compareBatchRequest struct {
	Environment string   `json:"environment"`
	Category    string   `json:"category"`
	Tables      []string `json:"tables"`
}

// handleCompareBatch compares an explicit list of tables. The category scopes
// table lookup but never implies which tables get compared.
func (s *Server) handleCompareBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req compareBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Environment == "" {
		writeError(w, http.StatusBadRequest, "Environment not specified")
		return
	}
	if req.Category == "" {
		writeError(w, http.StatusBadRequest, "Category not specified")
		return
	}
	if len(req.Tables) == 0 {
		writeError(w, http.StatusBadRequest, "No tables specified")
		return
	}

	specs, err := s.cfg.ResolveTables(req.Category, req.Tables)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := s.runner.CompareTables(r.Context(), req.Environment, req.Category, specs, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"summary": runner.Summarize(results),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
