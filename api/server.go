// Package api exposes decoded flight data over HTTP for jpiserver:
// GET /flights, GET /flights/{n}, GET /flights/{n}.csv.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"jpiedm/edm"
)

var tracer = otel.Tracer("jpiedm/api")

// Server serves one opened parser's flights over HTTP.
type Server struct {
	parser *edm.Parser
	log    *logrus.Entry
}

func NewServer(parser *edm.Parser, log *logrus.Entry) *Server {
	return &Server{parser: parser, log: log}
}

// Router builds the chi router, with request-id tagging, structured
// logging, panic recovery, and a tracing span wrapping every request.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestIDMiddleware)
	r.Use(s.tracingMiddleware)
	r.Use(s.loggingMiddleware)

	r.Get("/flights", s.handleListFlights)
	r.Get("/flights/{n}", s.handleGetFlight)
	r.Get("/flights/{n}.csv", s.handleGetFlightCSV)
	r.Get("/health", s.handleHealth)
	return r
}

type requestIDKey struct{}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		ctx := withRequestID(r, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithAttributes())
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"request_id": requestIDFromContext(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"duration":   time.Since(start),
		}).Info("request served")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type flightSummary struct {
	Number      uint16   `json:"flight_number"`
	SampleCount int      `json:"sample_count"`
	Valid       bool     `json:"valid"`
	HasGPS      bool     `json:"has_gps"`
	Warnings    []string `json:"warnings,omitempty"`
}

func (s *Server) handleListFlights(w http.ResponseWriter, r *http.Request) {
	flights := s.parser.Flights()
	out := make([]flightSummary, 0, len(flights))
	for _, f := range flights {
		out = append(out, summarize(f))
	}
	writeJSON(w, out)
}

func (s *Server) handleGetFlight(w http.ResponseWriter, r *http.Request) {
	n, ok := parseFlightNumber(w, r)
	if !ok {
		return
	}
	f, ok := s.parser.Flight(n)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, f)
}

func (s *Server) handleGetFlightCSV(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "n")
	raw = strings.TrimSuffix(raw, ".csv")
	n, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		http.Error(w, "invalid flight number", http.StatusBadRequest)
		return
	}
	f, ok := s.parser.Flight(uint16(n))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Write([]byte(f.ToCSV()))
}

func parseFlightNumber(w http.ResponseWriter, r *http.Request) (uint16, bool) {
	raw := chi.URLParam(r, "n")
	n, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		http.Error(w, "invalid flight number", http.StatusBadRequest)
		return 0, false
	}
	return uint16(n), true
}

func summarize(f *edm.Flight) flightSummary {
	return flightSummary{
		Number:      f.Number,
		SampleCount: len(f.Samples),
		Valid:       f.Valid(),
		HasGPS:      f.HasGPS(),
		Warnings:    f.ParseWarnings(),
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.Encode(v)
}
