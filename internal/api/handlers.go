package api

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/banshee-data/trajectory.report/internal/httputil"
	"github.com/banshee-data/trajectory.report/internal/plotting"
	"github.com/banshee-data/trajectory.report/internal/render"
	"github.com/banshee-data/trajectory.report/internal/store"
	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// FlightSummary is a stored flight with the value range of each quantity.
type FlightSummary struct {
	store.Flight
	Duration float64                            `json:"duration"`
	Ranges   map[trajectory.Quantity][2]float64 `json:"ranges"`
}

func (s *Server) listFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := s.store.ListFlights(r.Context())
	if err != nil {
		httputil.WriteError(w, fmt.Errorf("failed to list flights: %w", err))
		return
	}
	if icao := strings.ToLower(r.URL.Query().Get("icao24")); icao != "" {
		filtered := flights[:0]
		for _, f := range flights {
			if strings.ToLower(f.Icao24) == icao {
				filtered = append(filtered, f)
			}
		}
		flights = filtered
	}
	if flights == nil {
		flights = []store.Flight{}
	}
	httputil.WriteJSONOK(w, flights)
}

func (s *Server) showFlight(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	f, err := s.store.GetFlight(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err, store.ErrNotFound)
		return
	}
	ts, err := s.store.LoadTrajectories(r.Context(), []string{id})
	if err != nil {
		httputil.WriteError(w, err, store.ErrNotFound)
		return
	}
	httputil.WriteJSONOK(w, summarize(f, ts[0]))
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, s.cfg)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	httputil.WriteJSONOK(w, map[string]string{"status": "ok"})
}

func (s *Server) deleteFlight(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteFlight(r.Context(), r.PathValue("id")); err != nil {
		httputil.WriteError(w, err, store.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// plot loads the requested flights, builds the figure and renders it.
// Kind defaults to single for one flight and multi otherwise.
func (s *Server) plot(w http.ResponseWriter, r *http.Request) {
	target, err := plotting.ParseTarget(r.PathValue("target"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	query := r.URL.Query()
	var q trajectory.Quantity
	if target == plotting.QuantityTarget {
		if q, err = trajectory.ParseQuantity(query.Get("quantity")); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	ids := flightIDs(query["flight"])
	if len(ids) == 0 {
		httputil.BadRequest(w, "at least one flight parameter is required")
		return
	}
	kind := plotting.Multi
	if len(ids) == 1 {
		kind = plotting.Single
	}
	if k := query.Get("kind"); k != "" {
		if kind, err = plotting.ParseKind(k); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	// Density shading is quadratic in the pooled points, so reject oversized
	// requests before loading anything.
	if limit := s.cfg.GetMaxDensityFlights(); kind == plotting.Multi && limit > 0 && len(ids) > limit {
		httputil.BadRequest(w, fmt.Sprintf("at most %d flights per %s plot", limit, kind))
		return
	}
	format, err := render.ParseFormat(query.Get("format"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ts, err := s.store.LoadTrajectories(r.Context(), ids)
	if err != nil {
		httputil.WriteError(w, err, store.ErrNotFound)
		return
	}
	fig, err := s.plotter.Plot(plotting.Request{Target: target, Kind: kind, Quantity: q, Title: query.Get("title")}, ts)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := render.Render(&buf, fig, format); err != nil {
		httputil.WriteError(w, fmt.Errorf("failed to render plot: %w", err))
		return
	}
	httputil.WriteBytes(w, format.ContentType(), buf.Bytes())
}

// flightIDs accepts repeated and comma-separated flight parameters.
func flightIDs(values []string) []string {
	var out []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

func summarize(f store.Flight, t trajectory.Trajectory) FlightSummary {
	sum := FlightSummary{Flight: f, Duration: t.Duration(), Ranges: make(map[trajectory.Quantity][2]float64)}
	for _, q := range t.Quantities() {
		col, err := t.Column(q)
		if err != nil {
			continue
		}
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range col {
			if math.IsNaN(v) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		if lo <= hi {
			sum.Ranges[q] = [2]float64{lo, hi}
		}
	}
	return sum
}
