package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"quest-quiz-service/internal/engine"
	"quest-quiz-service/internal/models"
	"quest-quiz-service/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	Service *service.SessionService
}

func NewSessionHandler(s *service.SessionService) *SessionHandler {
	return &SessionHandler{Service: s}
}

// sessionConfigRequest mirrors the inbound config contract.
type sessionConfigRequest struct {
	Subject          string `json:"subject" binding:"required"`
	Topic            string `json:"topic"`
	Count            int    `json:"count"`
	Difficulty       int    `json:"difficulty"`
	HintsEnabled     bool   `json:"hints_enabled"`
	TimedModeEnabled bool   `json:"timed_mode_enabled"`
	LearnerProfile   struct {
		Age   int    `json:"age"`
		Level string `json:"level"`
	} `json:"learner_profile"`
}

func (r sessionConfigRequest) toConfig() models.SessionConfig {
	return models.SessionConfig{
		Subject:           r.Subject,
		Topic:             r.Topic,
		QuestionCount:     r.Count,
		DifficultyCeiling: r.Difficulty,
		HintsEnabled:      r.HintsEnabled,
		TimedModeEnabled:  r.TimedModeEnabled,
		LearnerProfile: models.LearnerProfile{
			Age:   r.LearnerProfile.Age,
			Level: r.LearnerProfile.Level,
		},
	}
}

// CreateSession starts a new quiz attempt for the authenticated learner.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req sessionConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}

	session, err := h.Service.StartSession(context.Background(), userID, req.toConfig())
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session": session,
		"message": "Session started",
	})
}

// StartAttempt starts a fresh attempt on a session that was reset.
func (h *SessionHandler) StartAttempt(c *gin.Context) {
	sessionID := c.Param("id")

	var req sessionConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	session, err := h.Service.StartAttempt(context.Background(), sessionID, req.toConfig())
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": session,
		"message": "New attempt started",
	})
}

// SubmitAnswer verifies the submitted choice and records the verdict.
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	sessionID := c.Param("id")

	var req struct {
		QuestionID string `json:"question_id" binding:"required"`
		ChoiceID   string `json:"choice_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid answer format",
			"details": err.Error(),
		})
		return
	}

	outcome, err := h.Service.SubmitAnswer(context.Background(), sessionID, req.QuestionID, req.ChoiceID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	if !outcome.Applied {
		// The session completed or was reset while the verification call
		// was in flight; the verdict was discarded.
		c.JSON(http.StatusOK, gin.H{"applied": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applied":     true,
		"is_correct":  outcome.IsCorrect,
		"explanation": outcome.Explanation,
	})
}

// RequestHint marks the question as hinted and returns the hint text.
func (h *SessionHandler) RequestHint(c *gin.Context) {
	sessionID := c.Param("id")

	var req struct {
		QuestionID string `json:"question_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hint, err := h.Service.RequestHint(context.Background(), sessionID, req.QuestionID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hint":           hint,
		"hint_available": hint != "",
	})
}

// NextQuestion advances the current question pointer.
func (h *SessionHandler) NextQuestion(c *gin.Context) {
	h.navigate(c, true)
}

// PreviousQuestion moves the current question pointer back.
func (h *SessionHandler) PreviousQuestion(c *gin.Context) {
	h.navigate(c, false)
}

func (h *SessionHandler) navigate(c *gin.Context, forward bool) {
	sessionID := c.Param("id")

	index, err := h.Service.Navigate(context.Background(), sessionID, forward)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current_index": index})
}

// FinishSession completes the attempt and returns the summary.
func (h *SessionHandler) FinishSession(c *gin.Context) {
	sessionID := c.Param("id")

	summary, err := h.Service.FinishSession(context.Background(), sessionID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": summary,
		"message": "Session finished",
	})
}

// ResetSession discards the attempt and returns the session to setup.
func (h *SessionHandler) ResetSession(c *gin.Context) {
	sessionID := c.Param("id")

	if err := h.Service.ResetSession(context.Background(), sessionID); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session reset"})
}

// GetSession returns the session snapshot.
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("id")

	session, err := h.Service.GetSession(context.Background(), sessionID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetUserSessions lists a learner's recent sessions.
func (h *SessionHandler) GetUserSessions(c *gin.Context) {
	userID := c.Param("id")

	sessions, err := h.Service.ListUserSessions(context.Background(), userID, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// DeleteSession discards the live attempt and removes the stored snapshot.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("id")

	if err := h.Service.DeleteSession(context.Background(), sessionID); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}

// GetSessionStatus returns a condensed view of the session's progress.
func (h *SessionHandler) GetSessionStatus(c *gin.Context) {
	sessionID := c.Param("id")

	session, err := h.Service.GetSession(context.Background(), sessionID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	answered, hinted := 0, 0
	for _, record := range session.Answers {
		if record.Answered() {
			answered++
		}
		if record.UsedHint {
			hinted++
		}
	}

	status := gin.H{
		"stage":              session.Stage,
		"current_index":      session.CurrentIndex,
		"question_count":     len(session.Items),
		"questions_answered": answered,
		"hints_used":         hinted,
		"timed_mode":         session.Config.TimedModeEnabled,
		"completion_type":    session.CompletionType,
	}
	if session.RemainingSeconds != nil {
		status["remaining_seconds"] = *session.RemainingSeconds
	}
	if len(session.Items) > 0 {
		status["progress_percent"] = answered * 100 / len(session.Items)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now(),
	})
}

// ValidateSessionAccess checks that the caller owns the session.
func (h *SessionHandler) ValidateSessionAccess(c *gin.Context) {
	sessionID := c.Param("id")
	userID := c.GetHeader("X-User-ID")

	session, err := h.Service.GetSession(context.Background(), sessionID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if session.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":      true,
		"session_id": sessionID,
		"user_id":    userID,
	})
}

// GetPoolInfo reports the question pool distribution for a subject.
func (h *SessionHandler) GetPoolInfo(c *gin.Context) {
	subject := c.Query("subject")
	if subject == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject is required"})
		return
	}

	info, err := h.Service.GetPoolInfo(context.Background(), subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get pool info",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pool_info": info})
}

// HealthCheck reports service liveness.
func (h *SessionHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":   "quest-quiz-service",
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

func (h *SessionHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found", "code": "SESSION_NOT_FOUND"})
	case errors.Is(err, engine.ErrUnknownQuestion):
		c.JSON(http.StatusNotFound, gin.H{"error": "Question is not part of this session", "code": "UNKNOWN_QUESTION"})
	case errors.Is(err, engine.ErrNoQuestionsAvailable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No questions available for the requested subject", "code": "NO_QUESTIONS_AVAILABLE"})
	case errors.Is(err, engine.ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Operation not valid in current session stage", "code": "INVALID_STATE_TRANSITION"})
	case errors.Is(err, engine.ErrVerificationFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Answer verification failed, retry or skip", "code": "VERIFICATION_FAILED"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error", "details": err.Error()})
	}
}
