package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/abhisek/parlo/internal/llm"
	"github.com/abhisek/parlo/internal/logging"
	"github.com/abhisek/parlo/internal/store"
	"github.com/abhisek/parlo/internal/tutor"
)

type createSessionRequest struct {
	UserID           string `json:"user_id"`
	NativeLanguage   string `json:"native_language"`
	LearningLanguage string `json:"learning_language"`
	Level            string `json:"level"`
	// Scenario is a catalogue id or a free-form scene description.
	Scenario string `json:"scenario"`
}

type sessionResponse struct {
	Key       string          `json:"key"`
	SessionID int64           `json:"session_id"`
	UserID    string          `json:"user_id"`
	State     string          `json:"state"`
	Profile   tutor.Profile   `json:"profile"`
	Reply     *tutor.Reply    `json:"reply,omitempty"`
	Messages  []tutor.Message `json:"messages,omitempty"`
}

type turnRequest struct {
	Message string `json:"message"`
}

type endResponse struct {
	Summary  string `json:"summary"`
	Mistakes int    `json:"mistakes"`
}

type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func (s *Server) listScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Catalog.All())
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = uuid.NewString()
	}

	profile := tutor.Profile{
		NativeLanguage:   req.NativeLanguage,
		LearningLanguage: req.LearningLanguage,
		Level:            tutor.Level(req.Level),
		Scenario:         s.cfg.Catalog.Resolve(req.Scenario),
	}

	sess := s.newSession(userID)
	reply, err := sess.Begin(r.Context(), profile)
	if err != nil {
		s.handleTutorError(w, r, err)
		return
	}

	key := uuid.NewString()
	s.register(r.Context(), key, sess)
	writeJSON(w, http.StatusCreated, sessionResponse{
		Key:       key,
		SessionID: sess.StoreID(),
		UserID:    userID,
		State:     sess.State().String(),
		Profile:   sess.Profile(),
		Reply:     &reply,
	})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	sess, ok := s.lookup(key)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Key:       key,
		SessionID: sess.StoreID(),
		UserID:    sess.UserID(),
		State:     sess.State().String(),
		Profile:   sess.Profile(),
		Messages:  sess.Transcript(),
	})
}

func (s *Server) sendTurn(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(chi.URLParam(r, "key"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	reply, err := sess.Send(r.Context(), req.Message)
	if err != nil {
		s.handleTutorError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	sess, ok := s.lookup(key)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	summary, err := sess.End(r.Context())
	if err != nil {
		s.handleTutorError(w, r, err)
		return
	}
	s.markEnded(key)
	writeJSON(w, http.StatusOK, endResponse{Summary: summary, Mistakes: len(sess.Mistakes())})
}

// listMistakes reads the persisted corrections, not the in-memory list.
func (s *Server) listMistakes(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(chi.URLParam(r, "key"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	records, err := s.cfg.Sessions.GetSessionMistakes(r.Context(), sess.StoreID())
	if err != nil {
		s.handleTutorError(w, r, err)
		return
	}
	if records == nil {
		records = []store.MistakeRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleTutorError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		cfgErr    *tutor.ConfigurationError
		modelErr  *tutor.ModelCallError
		rateLimit *llm.ErrRateLimit
	)
	switch {
	case errors.As(err, &cfgErr):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", cfgErr.Reason, r))
	case errors.Is(err, tutor.ErrEmptyInput):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
	case errors.Is(err, tutor.ErrSessionEnded):
		writeJSON(w, http.StatusConflict, errorResp("SESSION_ENDED", "Session already ended", r))
	case errors.As(err, &rateLimit):
		writeJSON(w, http.StatusTooManyRequests, errorResp("RATE_LIMITED", "The tutor is busy, please wait a moment and try again", r))
	case errors.As(err, &modelErr):
		writeJSON(w, http.StatusBadGateway, errorResp("MODEL_ERROR", "The tutor could not respond, please try again", r))
	default:
		logging.FromContext(r.Context(), s.logger).Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Internal error", r))
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) errorResponse {
	return errorResponse{Error: apiError{
		Code:      code,
		Message:   message,
		RequestID: chimiddleware.GetReqID(r.Context()),
	}}
}
