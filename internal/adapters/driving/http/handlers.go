package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nimbus-labs/meetlink-core/internal/core/domain"
	"github.com/nimbus-labs/meetlink-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"unsupported provider"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns server liveness
// @Tags         health
// @Produce      json
// @Success      200 {object} StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns whether backing stores are reachable
// @Tags         health
// @Produce      json
// @Success      200 {object} StatusResponse
// @Failure      503 {object} ErrorResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Tags         health
// @Produce      json
// @Success      200 {object} VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// OAuth endpoints

// AuthorizeRequest is the optional body of an authorize call
// @Description Authorization flow options
type AuthorizeRequest struct {
	ReturnURL string `json:"return_url,omitempty" example:"https://app.example.com/settings"`
}

// handleOAuthAuthorize godoc
// @Summary      Start provider authorization
// @Description  Returns the provider consent URL to redirect the browser to
// @Tags         oauth
// @Accept       json
// @Produce      json
// @Param        provider path string true "Provider" Enums(zoom, google, microsoft)
// @Param        request body AuthorizeRequest false "Flow options"
// @Success      200 {object} driving.BeginResponse
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/oauth/{provider}/authorize [post]
func (s *Server) handleOAuthAuthorize(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AuthorizeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	resp, err := s.oauthService.Begin(r.Context(), driving.BeginRequest{
		UserID:    userID,
		Provider:  r.PathValue("provider"),
		ReturnURL: req.ReturnURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Connection endpoints

// handleListConnections godoc
// @Summary      List connection status
// @Description  Per-provider configured/connected/expired status for the caller
// @Tags         connections
// @Produce      json
// @Success      200 {array} domain.ConnectionStatus
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/connections [get]
func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	statuses, err := s.oauthService.Status(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list connections")
		return
	}

	writeJSON(w, http.StatusOK, statuses)
}

// handleDisconnect godoc
// @Summary      Disconnect a provider
// @Description  Deletes the stored connection; the provider-side grant is not revoked
// @Tags         connections
// @Produce      json
// @Param        provider path string true "Provider" Enums(zoom, google, microsoft)
// @Success      200 {object} StatusResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/connections/{provider} [delete]
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	provider, err := domain.ParseProvider(r.PathValue("provider"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := s.oauthService.Disconnect(r.Context(), userID, provider); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}

// Meeting endpoints

// handleCreateMeeting godoc
// @Summary      Create a meeting
// @Description  Provisions a meeting through the caller's stored connection
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Param        provider path string true "Provider" Enums(zoom, google, microsoft)
// @Param        request body domain.MeetingRequest true "Meeting details"
// @Success      201 {object} domain.Meeting
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/meetings/{provider} [post]
func (s *Server) handleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req domain.MeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	meeting, err := s.meetingService.CreateMeeting(r.Context(), userID, r.PathValue("provider"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, meeting)
}

// writeServiceError maps domain errors to HTTP statuses. Messages stay
// generic; provider error bodies never pass through.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedProvider),
		errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrConnectionNotFound):
		writeError(w, http.StatusNotFound, "no connection for this provider")
	case errors.Is(err, domain.ErrProviderUnavailable):
		writeError(w, http.StatusConflict, "provider is not configured")
	case errors.Is(err, domain.ErrReauthorizationRequired):
		writeError(w, http.StatusConflict, "reauthorization required")
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "too many requests")
	case errors.Is(err, domain.ErrEncryptionKeyInvalid):
		writeError(w, http.StatusServiceUnavailable, "service cannot store connections")
	case errors.Is(err, domain.ErrTokenRefreshFailed),
		errors.Is(err, domain.ErrMeetingCreationFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
