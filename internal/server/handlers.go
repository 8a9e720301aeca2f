package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	sessionrepo "github.com/ThatOrJohn/flowturi-designer/internal/adapters/repository/session"
	"github.com/ThatOrJohn/flowturi-designer/internal/app/dto"
	"github.com/ThatOrJohn/flowturi-designer/internal/app/editor"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/diagram"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/simulation"
	"github.com/ThatOrJohn/flowturi-designer/pkg/validation"
)

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) settingsOptions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.OptionsResponse{
		Durations: simulation.DurationOptions,
		Intervals: simulation.IntervalOptions,
		Defaults:  s.defaults,
	})
}

// createSession handles POST /sessions. The body is optional.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSessionRequest
	if r.ContentLength != 0 {
		if err := s.validator.DecodeJSON(r, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	settings := s.defaults
	if req.Settings != nil {
		if err := req.Settings.Validate(); err != nil {
			s.respondError(w, r, err)
			return
		}
		settings = *req.Settings
	}

	initial := diagram.New()
	if req.Title != "" {
		initial.Title = req.Title
	}

	sess, err := s.sessions.Create(r.Context(), editor.WithInitialState(initial), editor.WithSettings(settings))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.logger.Info("session created", zap.String("session", sess.ID))
	w.Header().Set("Location", "/sessions/"+sess.ID)
	respondJSON(w, http.StatusCreated, sessionView(sess))
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	out := make([]dto.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		state := sess.Editor.State()
		out = append(out, dto.SessionSummary{
			ID:        sess.ID,
			CreatedAt: sess.CreatedAt,
			Title:     state.Title,
			Nodes:     len(state.Nodes),
			Edges:     len(state.Edges),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, sessionView(sess))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dispatchCommand handles POST /sessions/{sessionID}/commands
func (s *Server) dispatchCommand(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req dto.CommandRequest
	if err := s.validator.DecodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	cmd, err := req.ToCommand()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if _, err := sess.Editor.Dispatch(r.Context(), cmd); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionView(sess))
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	_, applied := sess.Editor.Undo()
	respondJSON(w, http.StatusOK, dto.HistoryStepResponse{Applied: applied, Session: sessionView(sess)})
}

func (s *Server) redo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	_, applied := sess.Editor.Redo()
	respondJSON(w, http.StatusOK, dto.HistoryStepResponse{Applied: applied, Session: sessionView(sess)})
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, dto.HistoryResponse{
		Entries: sess.Editor.Timeline(),
		CanUndo: sess.Editor.CanUndo(),
		CanRedo: sess.Editor.CanRedo(),
	})
}

func (s *Server) jump(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req dto.JumpRequest
	if err := s.validator.DecodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if _, err := sess.Editor.Jump(req.Offset); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionView(sess))
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req dto.SettingsRequest
	if err := s.validator.DecodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := sess.Editor.SetSettings(req.Settings()); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionView(sess))
}

// exportCSV handles GET /sessions/{sessionID}/export.csv. The artifact is
// also handed to the configured sink.
func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	artifact, err := s.exports.Export(r.Context(), sess.Editor.State(), sess.Editor.Settings(), s.sink)
	if err != nil && artifact == nil {
		s.respondError(w, r, err)
		return
	}
	if err != nil {
		// The download still succeeds when only the sink failed.
		s.logger.Warn("export sink failed", zap.String("session", sess.ID), zap.Error(err))
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.CSV)))
	w.Header().Set("X-Export-ID", artifact.ID)
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.CSV)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*sessionrepo.Session, bool) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err)
		return nil, false
	}
	return sess, true
}

func sessionView(sess *sessionrepo.Session) dto.SessionResponse {
	return dto.SessionResponse{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		Diagram:   sess.Editor.State(),
		Settings:  sess.Editor.Settings(),
		CanUndo:   sess.Editor.CanUndo(),
		CanRedo:   sess.Editor.CanRedo(),
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	var ve validation.ValidationErrors
	if errors.As(err, &ve) {
		validation.WriteErrorResponse(w, status, ve)
		return
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	respondJSON(w, status, ErrorResponse{Error: err.Error()})
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
