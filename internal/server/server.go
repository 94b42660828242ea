package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Mohanapavani03/agriconnect/pkg/alert"
	"github.com/Mohanapavani03/agriconnect/pkg/directory"
	"github.com/Mohanapavani03/agriconnect/pkg/model"
	"github.com/Mohanapavani03/agriconnect/pkg/satdata"
	"github.com/Mohanapavani03/agriconnect/pkg/session"
)

// Server exposes the session, alert, and environmental data API.
type Server struct {
	sessions    *session.Store
	distributor *alert.Distributor
	data        *satdata.Service
	directory   *directory.Directory
	mux         *http.ServeMux
	logger      *slog.Logger
}

// NewServer creates an API server.
func NewServer(sessions *session.Store, distributor *alert.Distributor, data *satdata.Service, dir *directory.Directory, logger *slog.Logger) *Server {
	s := &Server{
		sessions:    sessions,
		distributor: distributor,
		data:        data,
		directory:   dir,
		mux:         http.NewServeMux(),
		logger:      logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.mux.HandleFunc("POST /api/v1/session", s.handleLogin)
	s.mux.HandleFunc("GET /api/v1/session", s.handleCurrentSession)
	s.mux.HandleFunc("DELETE /api/v1/session", s.handleLogout)
	s.mux.HandleFunc("PATCH /api/v1/session/profile", s.handleUpdateProfile)

	s.mux.HandleFunc("GET /api/v1/ndvi", s.handleNDVI)
	s.mux.HandleFunc("GET /api/v1/rainfall", s.handleRainfall)
	s.mux.HandleFunc("GET /api/v1/cyclones", s.handleCyclones)
	s.mux.HandleFunc("GET /api/v1/trends", s.handleTrends)

	s.mux.HandleFunc("GET /api/v1/alerts", s.handleAlerts)
	s.mux.HandleFunc("POST /api/v1/alerts/broadcast", s.handleBroadcast)
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flow := session.NewLoginFlow(s.sessions)
	if err := flow.SubmitPhone(req.Phone); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	farmer, err := flow.SubmitCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCode) || errors.Is(err, session.ErrUnknownPhone) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		s.logger.Error("login", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, farmer)
}

func (s *Server) handleCurrentSession(w http.ResponseWriter, _ *http.Request) {
	farmer := s.sessions.Current()
	if farmer == nil {
		writeError(w, http.StatusNotFound, "not logged in")
		return
	}
	writeJSON(w, http.StatusOK, farmer)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := s.sessions.Logout(ctx); err != nil {
		s.logger.Error("logout", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type profileUpdateRequest struct {
	Name        *model.Text        `json:"name,omitempty"`
	District    *model.Text        `json:"district,omitempty"`
	Language    *model.Language    `json:"language,omitempty"`
	Fields      *[]model.Field     `json:"fields,omitempty"`
	Preferences *model.Preferences `json:"preferences,omitempty"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if s.sessions.Current() == nil {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update := session.ProfileUpdate{
		Name:        req.Name,
		District:    req.District,
		Language:    req.Language,
		Fields:      req.Fields,
		Preferences: req.Preferences,
	}
	if err := s.sessions.UpdateProfile(ctx, update); err != nil {
		s.logger.Error("update profile", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, s.sessions.Current())
}

func (s *Server) handleNDVI(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	readings, err := s.data.NDVI(ctx, r.URL.Query().Get("district"))
	if err != nil {
		s.logger.Error("fetch ndvi", "error", err)
		writeError(w, http.StatusBadGateway, "satellite data unavailable")
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

func (s *Server) handleRainfall(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "lat and lon query parameters are required")
		return
	}
	hours, _ := strconv.Atoi(r.URL.Query().Get("hours"))

	points, err := s.data.Rainfall(ctx, model.Coordinates{Lat: lat, Lon: lon}, hours)
	if err != nil {
		s.logger.Error("fetch rainfall", "error", err)
		writeError(w, http.StatusBadGateway, "weather data unavailable")
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleCyclones(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cyclones, err := s.data.Cyclones(ctx)
	if err != nil {
		s.logger.Error("fetch cyclones", "error", err)
		writeError(w, http.StatusBadGateway, "cyclone data unavailable")
		return
	}
	writeJSON(w, http.StatusOK, cyclones)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	months, _ := strconv.Atoi(r.URL.Query().Get("months"))
	points, err := s.data.Trends(ctx, r.URL.Query().Get("district"), months)
	if err != nil {
		s.logger.Error("fetch trends", "error", err)
		writeError(w, http.StatusBadGateway, "historical data unavailable")
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// handleAlerts generates alerts for the current conditions and returns them.
// Generation is transient: nothing is stored, every call re-evaluates.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	district := r.URL.Query().Get("district")
	crop := r.URL.Query().Get("crop")

	conditions, err := s.data.Conditions(ctx, district, crop)
	if err != nil {
		s.logger.Error("assemble conditions", "error", err)
		writeError(w, http.StatusBadGateway, "environmental data unavailable")
		return
	}

	alerts := s.distributor.Active(s.distributor.Generate(conditions))
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var conditions model.Conditions
	if err := json.NewDecoder(r.Body).Decode(&conditions); err != nil {
		writeError(w, http.StatusBadRequest, "invalid conditions body")
		return
	}

	alerts := s.distributor.Generate(conditions)
	s.distributor.Broadcast(ctx, alerts, s.directory.All())

	writeJSON(w, http.StatusOK, map[string]any{
		"alerts":     len(alerts),
		"recipients": s.directory.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
