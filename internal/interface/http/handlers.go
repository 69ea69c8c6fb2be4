package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/campuscents/campuscents-gamification/internal/application/command"
	"github.com/campuscents/campuscents-gamification/internal/application/query"
	"github.com/campuscents/campuscents-gamification/internal/domain/achievement"
	"github.com/campuscents/campuscents-gamification/internal/domain/shared"
	"github.com/campuscents/campuscents-gamification/internal/domain/stats"
	"github.com/campuscents/campuscents-gamification/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "CampusCents Gamification API",
		"version":     "v1",
		"description": "REST API for the CampusCents gamification engine - badges, streaks, leaderboards",
		"endpoints": map[string]string{
			"health":       "/health",
			"leaderboard":  "/api/v1/leaderboard",
			"profile":      "/api/v1/users/{id}/profile",
			"transactions": "/api/v1/events/transaction",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	// Default health response
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// READ HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetLeaderboard handles GET /api/v1/leaderboard
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetLeaderboardHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Leaderboard handler not configured")
		return
	}

	// Parse query parameters
	q := query.GetLeaderboardQuery{
		Type:   getQueryParam(r, "type", ""),
		Period: getQueryParam(r, "period", ""),
		Campus: getQueryParam(r, "campus", ""),
		Limit:  getQueryParamInt(r, "limit", 0),
	}

	result, err := s.deps.GetLeaderboardHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, &ResponseMeta{
		TotalCount: result.TotalCount,
		PageSize:   len(result.Entries),
	})
}

// handleGetUserProfile handles GET /api/v1/users/{id}/profile
func (s *Server) handleGetUserProfile(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetUserProfileHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Profile handler not configured")
		return
	}

	q := query.GetUserProfileQuery{
		UserID:           r.PathValue("id"),
		AchievementLimit: getQueryParamInt(r, "achievement_limit", 0),
	}

	result, err := s.deps.GetUserProfileHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// USER REGISTRATION
// ══════════════════════════════════════════════════════════════════════════════

type registerUserRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Campus      string `json:"campus"`
	Timezone    string `json:"timezone"`
}

// handleRegisterUser handles POST /api/v1/users
func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	if s.deps.RegisterUserHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Registration handler not configured")
		return
	}

	var req registerUserRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.deps.RegisterUserHandler.Handle(r.Context(), command.RegisterUserCommand{
		UserID:      req.UserID,
		DisplayName: req.DisplayName,
		Campus:      req.Campus,
		Timezone:    req.Timezone,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}

	writeJSON(w, status, map[string]interface{}{
		"user_id":         result.UserID,
		"created":         result.Created,
		"already_existed": result.AlreadyExisted,
		"registered_at":   result.RegisteredAt,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT INGESTION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type transactionEventRequest struct {
	UserID           string    `json:"user_id"`
	AmountCents      int64     `json:"amount_cents"`
	Kind             string    `json:"kind"`
	Category         string    `json:"category"`
	BudgetStreakDays int       `json:"budget_streak_days"`
	Timestamp        time.Time `json:"timestamp"`
	CorrelationID    string    `json:"correlation_id"`
}

// handleTransactionEvent handles POST /api/v1/events/transaction
func (s *Server) handleTransactionEvent(w http.ResponseWriter, r *http.Request) {
	if s.deps.ProcessTransactionHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Transaction handler not configured")
		return
	}

	var req transactionEventRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.deps.ProcessTransactionHandler.Handle(r.Context(), command.ProcessTransactionCommand{
		UserID:           req.UserID,
		AmountCents:      req.AmountCents,
		Kind:             command.TransactionKind(req.Kind),
		Category:         req.Category,
		BudgetStreakDays: req.BudgetStreakDays,
		Timestamp:        req.Timestamp,
		CorrelationID:    req.CorrelationID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":         result.UserID,
		"net_savings":     result.NetSavings,
		"current_streak":  result.CurrentStreak,
		"streak_changed":  result.StreakChanged,
		"milestone_title": result.MilestoneTitle,
		"badges_earned":   result.BadgesEarned,
		"level":           result.Level,
		"processed_at":    result.ProcessedAt,
	})
}

type goalEventRequest struct {
	UserID        string `json:"user_id"`
	GoalID        string `json:"goal_id"`
	CorrelationID string `json:"correlation_id"`
}

// handleGoalEvent handles POST /api/v1/events/goal
func (s *Server) handleGoalEvent(w http.ResponseWriter, r *http.Request) {
	if s.deps.CompleteGoalHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Goal handler not configured")
		return
	}

	var req goalEventRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.deps.CompleteGoalHandler.Handle(r.Context(), command.CompleteGoalCommand{
		UserID:        req.UserID,
		GoalID:        req.GoalID,
		CorrelationID: req.CorrelationID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":         result.UserID,
		"goals_completed": result.GoalsCompleted,
		"badges_earned":   result.BadgesEarned,
		"level":           result.Level,
		"processed_at":    result.ProcessedAt,
	})
}

type hustleEventRequest struct {
	UserID        string `json:"user_id"`
	HustleID      string `json:"hustle_id"`
	EarnedCents   int64  `json:"earned_cents"`
	CorrelationID string `json:"correlation_id"`
}

// handleHustleEvent handles POST /api/v1/events/hustle
func (s *Server) handleHustleEvent(w http.ResponseWriter, r *http.Request) {
	if s.deps.CompleteHustleHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Hustle handler not configured")
		return
	}

	var req hustleEventRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.deps.CompleteHustleHandler.Handle(r.Context(), command.CompleteHustleCommand{
		UserID:        req.UserID,
		HustleID:      req.HustleID,
		EarnedCents:   req.EarnedCents,
		CorrelationID: req.CorrelationID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":           result.UserID,
		"hustles_completed": result.HustlesCompleted,
		"net_savings":       result.NetSavings,
		"badges_earned":     result.BadgesEarned,
		"processed_at":      result.ProcessedAt,
	})
}

type loginEventRequest struct {
	UserID        string `json:"user_id"`
	CorrelationID string `json:"correlation_id"`
}

// handleLoginEvent handles POST /api/v1/events/login
//
// Login is the natural celebration delivery point: the response carries
// the drained pending celebrations so the client can play them on app open.
func (s *Server) handleLoginEvent(w http.ResponseWriter, r *http.Request) {
	if s.deps.RecordLoginHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Login handler not configured")
		return
	}

	var req loginEventRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.deps.RecordLoginHandler.Handle(r.Context(), command.RecordLoginCommand{
		UserID:        req.UserID,
		CorrelationID: req.CorrelationID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":        result.UserID,
		"current_streak": result.CurrentStreak,
		"streak_changed": result.StreakChanged,
		"celebrations":   result.Celebrations,
		"processed_at":   result.ProcessedAt,
	})
}

type shareEventRequest struct {
	UserID        string `json:"user_id"`
	AchievementID string `json:"achievement_id"`
}

// handleShareEvent handles POST /api/v1/events/share
func (s *Server) handleShareEvent(w http.ResponseWriter, r *http.Request) {
	if s.deps.ShareAchievementHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Share handler not configured")
		return
	}

	var req shareEventRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.deps.ShareAchievementHandler.Handle(r.Context(), command.ShareAchievementCommand{
		UserID:        req.UserID,
		AchievementID: req.AchievementID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":             result.UserID,
		"achievements_shared": result.AchievementsShared,
		"badges_earned":       result.BadgesEarned,
		"processed_at":        result.ProcessedAt,
	})
}

// handleDrainCelebrations handles POST /api/v1/users/{id}/celebrations/drain
//
// Draining is destructive: every returned item is already off the queue.
func (s *Server) handleDrainCelebrations(w http.ResponseWriter, r *http.Request) {
	if s.deps.DrainCelebrationsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Celebration handler not configured")
		return
	}

	items, err := s.deps.DrainCelebrationsHandler.Handle(r.Context(), command.DrainCelebrationsCommand{
		UserID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":      r.PathValue("id"),
		"celebrations": items,
		"count":        len(items),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleAdminRebuildLeaderboards handles POST /api/v1/admin/leaderboard/rebuild
func (s *Server) handleAdminRebuildLeaderboards(w http.ResponseWriter, r *http.Request) {
	if s.deps.RebuildLeaderboards == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Rebuild hook not configured")
		return
	}

	start := time.Now()
	if err := s.deps.RebuildLeaderboards(r.Context()); err != nil {
		s.logger.Error("manual leaderboard rebuild failed",
			logger.Err(err),
			logger.String("request_id", getRequestID(r.Context())))
		writeJSONErrorWithDetails(w, http.StatusInternalServerError,
			"rebuild_failed", "Leaderboard rebuild failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "rebuilt",
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST / ERROR HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decodeJSON decodes a JSON request body. Writes the error response and
// returns false when decoding fails.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Failed to read request body")
		return false
	}
	defer r.Body.Close()

	if len(body) == 0 {
		writeJSONError(w, http.StatusBadRequest, "empty_body", "Request body is required")
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON")
		return false
	}

	return true
}

// writeDomainError maps domain errors to HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case shared.IsValidation(err) || errors.Is(err, shared.ErrInvalidEvent):
		writeJSONErrorWithDetails(w, http.StatusBadRequest,
			"validation_failed", "Request validation failed", err.Error())

	case shared.IsNotFound(err) ||
		errors.Is(err, stats.ErrStatsNotFound) ||
		errors.Is(err, achievement.ErrAchievementNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", "Requested entity was not found")

	case shared.IsAlreadyExists(err) || errors.Is(err, stats.ErrStatsAlreadyExist):
		writeJSONError(w, http.StatusConflict, "already_exists", "Entity already exists")

	default:
		s.logger.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
			logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError,
			"internal_error", "An unexpected error occurred")
	}
}
