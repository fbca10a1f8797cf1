// Package server exposes the pipeline and its persisted artifacts over a
// small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi"
	"github.com/pkg/errors"
	"github.com/rs/cors"

	"github.com/echolens/tweetscope/pkg/pipeline"
	"github.com/echolens/tweetscope/pkg/store"
	"github.com/echolens/tweetscope/pkg/twitter"
)

type PipelineRunner interface {
	Run(ctx context.Context, query string) (*pipeline.Result, error)
}

type TrendsFetcher interface {
	Trends(ctx context.Context, woeid string) ([]twitter.Trend, error)
}

type ResultReader interface {
	Latest() (*store.Envelope, error)
	Translation(id string) (*store.Translation, error)
	ListTranslations() ([]string, error)
}

type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]store.SearchRun, error)
}

type Server struct {
	runner  PipelineRunner
	results ResultReader
	trends  TrendsFetcher // optional
	history HistoryReader // optional
	logger  *log.Logger
}

func New(logger *log.Logger, runner PipelineRunner, results ResultReader) *Server {
	return &Server{
		runner:  runner,
		results: results,
		logger:  logger,
	}
}

func (s *Server) WithTrends(trends TrendsFetcher) *Server {
	s.trends = trends
	return s
}

func (s *Server) WithHistory(history HistoryReader) *Server {
	s.history = history
	return s
}

func (s *Server) Router() *chi.Mux {
	router := chi.NewRouter()
	router.Use(cors.New(cors.Options{
		AllowCredentials: true,
		AllowedOrigins:   []string{"*"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		Debug:            false,
	}).Handler)

	router.Get("/health", s.healthHandler)
	router.Post("/api/variable", s.searchHandler)
	router.Get("/api/tweets", s.latestTweetsHandler)
	router.Get("/api/translations", s.listTranslationsHandler)
	router.Get("/api/translations/{id}", s.translationHandler)
	if s.trends != nil {
		router.Get("/api/trends", s.trendsHandler)
	}
	if s.history != nil {
		router.Get("/api/searches", s.searchesHandler)
	}

	return router
}

type searchRequest struct {
	SearchQuery string `json:"searchQuery"`
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.logger.Error("Failed to decode search request", "error", err)
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body."})
		return
	}

	query := strings.TrimSpace(req.SearchQuery)
	if query == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "No search query provided."})
		return
	}

	result, err := s.runner.Run(r.Context(), query)
	if err != nil {
		s.logger.Error("Pipeline run failed", "query", query, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   err.Error(),
			"message": "Failed to fetch or process Twitter data",
		})
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) latestTweetsHandler(w http.ResponseWriter, r *http.Request) {
	envelope, err := s.results.Latest()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeJSON(w, http.StatusNotFound, map[string]string{"message": "No tweet data available yet"})
			return
		}
		s.logger.Error("Failed to read latest tweets", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   err.Error(),
			"message": "Failed to retrieve tweet data",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, envelope)
}

func (s *Server) translationHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	translation, err := s.results.Translation(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeJSON(w, http.StatusNotFound, map[string]string{"message": "Translation not available"})
			return
		}
		s.logger.Error("Failed to read translation", "id", id, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   err.Error(),
			"message": "Failed to retrieve translation",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, translation)
}

func (s *Server) listTranslationsHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := s.results.ListTranslations()
	if err != nil {
		s.logger.Error("Failed to list translations", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   err.Error(),
			"message": "Failed to list translations",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"translations": ids})
}

func (s *Server) trendsHandler(w http.ResponseWriter, r *http.Request) {
	woeid := r.URL.Query().Get("woeid")
	trends, err := s.trends.Trends(r.Context(), woeid)
	if err != nil {
		s.logger.Error("Failed to fetch trends", "woeid", woeid, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   err.Error(),
			"message": "Failed to fetch trends",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"trends": trends})
}

func (s *Server) searchesHandler(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list search runs", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   err.Error(),
			"message": "Failed to list searches",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"searches": runs})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}
