// Package api exposes the linked dataset over a read-only HTTP JSON API.
//
// The database is immutable after construction, so every handler is safe
// under unlimited concurrency with no locking.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chalu/neos/internal/database"
	"github.com/chalu/neos/internal/filters"
	"github.com/chalu/neos/internal/metrics"
	"github.com/chalu/neos/internal/models"
)

// defaultQueryLimit caps /v1/query responses when the caller does not pass
// an explicit limit. limit=0 is an explicit request for everything.
const defaultQueryLimit = 50

// Server is an HTTP API server over a linked Database.
type Server struct {
	db        *database.Database
	logger    *slog.Logger
	authToken string // empty = no auth required
}

// NewServer creates a new Server with the given dependencies.
func NewServer(db *database.Database, logger *slog.Logger, authToken string) *Server {
	return &Server{
		db:        db,
		logger:    logger,
		authToken: authToken,
	}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check — no auth required.
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	// Lookup and query endpoints — wrapped with auth middleware.
	mux.HandleFunc("GET /v1/neos/{designation}", s.auth(s.handleGetNEO))
	mux.HandleFunc("GET /v1/neos", s.auth(s.handleFindByName))
	mux.HandleFunc("GET /v1/query", s.auth(s.handleQuery))
	mux.HandleFunc("GET /v1/stats", s.auth(s.handleStats))

	return s.requestID(mux)
}

// --- middleware ---

// auth wraps a handler with Bearer token authentication when authToken is set.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// requestID tags every request with an ID and logs it on completion.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request served",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

// --- handlers ---

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetNEO(w http.ResponseWriter, r *http.Request) {
	designation := r.PathValue("designation")
	if designation == "" {
		s.writeError(w, http.StatusBadRequest, "designation is required")
		return
	}

	metrics.Inc(metrics.LookupsTotal)
	neo := s.db.FindByDesignation(designation)
	if neo == nil {
		s.writeError(w, http.StatusNotFound, "no NEO with that designation")
		return
	}

	s.writeJSON(w, http.StatusOK, neoResponse(neo))
}

func (s *Server) handleFindByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	metrics.Inc(metrics.LookupsTotal)
	neo := s.db.FindByName(name)
	if neo == nil {
		s.writeError(w, http.StatusNotFound, "no NEO with that name")
		return
	}

	s.writeJSON(w, http.StatusOK, neoResponse(neo))
}

// queryResponse is returned by GET /v1/query.
type queryResponse struct {
	Count   int              `json:"count"`
	Results []map[string]any `json:"results"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	criteria, limit, err := parseCriteria(r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results := make([]map[string]any, 0)
	for ca := range filters.Limit(s.db.Query(filters.Build(criteria)), limit) {
		results = append(results, ca.Map())
	}

	s.writeJSON(w, http.StatusOK, queryResponse{Count: len(results), Results: results})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.db.Stats())
}

// --- helpers ---

// neoResponse renders an object with a summary of its linked approaches.
func neoResponse(neo *models.NearEarthObject) map[string]any {
	resp := neo.Map()
	resp["approach_count"] = len(neo.Approaches)
	return resp
}

// parseCriteria maps /v1/query parameters onto filter criteria. Unknown
// parameters other than "limit" are rejected so that a typo cannot silently
// widen a query.
func parseCriteria(values map[string][]string) (filters.Criteria, int, error) {
	var c filters.Criteria
	limit := defaultQueryLimit

	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		raw := vals[0]

		var err error
		switch key {
		case "date":
			c.Date, err = parseDate(raw)
		case "start_date":
			c.StartDate, err = parseDate(raw)
		case "end_date":
			c.EndDate, err = parseDate(raw)
		case "distance_min":
			c.DistanceMin, err = parseFloat(raw)
		case "distance_max":
			c.DistanceMax, err = parseFloat(raw)
		case "velocity_min":
			c.VelocityMin, err = parseFloat(raw)
		case "velocity_max":
			c.VelocityMax, err = parseFloat(raw)
		case "diameter_min":
			c.DiameterMin, err = parseFloat(raw)
		case "diameter_max":
			c.DiameterMax, err = parseFloat(raw)
		case "hazardous":
			var b bool
			b, err = strconv.ParseBool(raw)
			if err == nil {
				c.Hazardous = &b
			}
		case "limit":
			limit, err = strconv.Atoi(raw)
			if err == nil && limit < 0 {
				limit = 0
			}
		default:
			return c, 0, &badParamError{key: key, reason: "unknown parameter"}
		}
		if err != nil {
			return c, 0, &badParamError{key: key, reason: "invalid value"}
		}
	}

	return c, limit, nil
}

type badParamError struct {
	key    string
	reason string
}

func (e *badParamError) Error() string {
	return e.reason + ": " + e.key
}

func parseDate(raw string) (*time.Time, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseFloat(raw string) (*float64, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// writeJSON encodes v as JSON and writes it to w with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(v); encErr != nil {
		s.logger.Error("failed to encode response", "error", encErr)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// Shutdown gracefully shuts down an http.Server with the given timeout.
// This is a convenience helper used by the serve command.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
