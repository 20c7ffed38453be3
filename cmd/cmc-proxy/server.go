package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Sternrassler/cmc-client/pkg/client"
	"github.com/Sternrassler/cmc-client/pkg/metrics"
	"github.com/Sternrassler/cmc-client/pkg/request"
	"github.com/Sternrassler/cmc-client/pkg/snapshot"
	"github.com/rs/zerolog"
)

// server holds the handler dependencies. store is nil when snapshots are
// disabled.
type server struct {
	cmc    *client.Client
	store  *snapshot.Store
	logger zerolog.Logger
}

func newServer(cmc *client.Client, store *snapshot.Store, logger zerolog.Logger) *server {
	return &server{cmc: cmc, store: store, logger: logger}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", s.readyHandler)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /v2/listings/{$}", s.listingsHandler)
	mux.HandleFunc("GET /v2/ticker/{$}", s.tickersHandler)
	mux.HandleFunc("GET /v2/ticker/{id}/{$}", s.tickerHandler)
	mux.HandleFunc("GET /v2/global/{$}", s.globalHandler)
	mux.HandleFunc("GET /snapshots/ticker/{$}", s.snapshotHandler)
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func (s *server) readyHandler(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			s.logger.Warn().Err(err).Msg("Readiness check failed")
			http.Error(w, "Redis unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func (s *server) listingsHandler(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, s.cmc.GetCurrencies(r.Context()))
}

func (s *server) tickersHandler(w http.ResponseWriter, r *http.Request) {
	converter, ok := converterParam(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	if q.Has(request.ParamStart) || q.Has(request.ParamLimit) {
		start, err := intParam(q.Get(request.ParamStart), request.DefaultStartPosition, 0, 1<<30)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start: "+err.Error())
			return
		}
		limit, err := intParam(q.Get(request.ParamLimit), request.DefaultLimit, 1, request.DefaultLimit)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit: "+err.Error())
			return
		}
		writeEnvelope(w, s.cmc.GetTickersInRange(r.Context(), start, limit, converter))
		return
	}

	resp := s.cmc.GetAllTickers(r.Context(), converter)
	if resp.Success() && s.store != nil {
		s.saveSnapshot(r, converter, resp)
	}
	writeEnvelope(w, resp)
}

func (s *server) saveSnapshot(r *http.Request, converter string, resp *client.TickersResponse) {
	snap, err := snapshot.NewTickerSnapshot(converter, resp, s.store.Retention())
	if err == nil {
		err = s.store.Save(r.Context(), snap)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("converter", converter).Msg("Failed to store snapshot")
		return
	}
	s.logger.Info().
		Str("snapshot_id", snap.ID.String()).
		Str("key", snap.Key().String()).
		Int("count", snap.Count).
		Msg("Stored ticker snapshot")
}

func (s *server) tickerHandler(w http.ResponseWriter, r *http.Request) {
	converter, ok := converterParam(w, r)
	if !ok {
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid ticker id %q", r.PathValue("id")))
		return
	}
	writeEnvelope(w, s.cmc.GetTickerByID(r.Context(), id, converter))
}

func (s *server) globalHandler(w http.ResponseWriter, r *http.Request) {
	converter, ok := converterParam(w, r)
	if !ok {
		return
	}
	writeEnvelope(w, s.cmc.GetGlobalData(r.Context(), converter))
}

func (s *server) snapshotHandler(w http.ResponseWriter, r *http.Request) {
	converter, ok := converterParam(w, r)
	if !ok {
		return
	}
	if s.store == nil {
		writeError(w, http.StatusNotFound, "snapshots are disabled")
		return
	}

	snap, err := s.store.Load(r.Context(), snapshot.Key{Kind: snapshot.KindTickers, Converter: converter})
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		writeError(w, http.StatusNotFound, "no snapshot stored")
		return
	case err != nil:
		s.logger.Warn().Err(err).Str("converter", converter).Msg("Failed to load snapshot")
		writeError(w, http.StatusServiceUnavailable, "snapshot store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// converterParam returns the normalized convert parameter. It writes a 400
// and returns false when the currency is not supported.
func converterParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	converter := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get(request.ParamConvert)))
	if converter != "" && !request.IsSupportedConverter(converter) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported converter %q", converter))
		return "", false
	}
	return converter, true
}

// intParam parses an optional integer within [lo, hi].
func intParam(raw string, def, lo, hi int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", raw)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%d is outside [%d, %d]", v, lo, hi)
	}
	return v, nil
}

// writeEnvelope answers 200 with a successful envelope and 502 otherwise.
func writeEnvelope[T any](w http.ResponseWriter, resp *client.Response[T]) {
	status := http.StatusOK
	if !resp.Success() {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
