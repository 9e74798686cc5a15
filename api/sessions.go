package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"omnibot/dispatch"
	"omnibot/session"
)

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	list := h.sessions.List()
	out := make([]session.Snapshot, 0, len(list))
	for _, s := range list {
		out = append(out, s.Snapshot())
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) createSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	writeJSON(w, http.StatusCreated, s.Snapshot())
}

func (h *handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := h.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
	}
	return s, ok
}

func (h *handler) getSession(w http.ResponseWriter, r *http.Request) {
	if s, ok := h.session(w, r); ok {
		writeJSON(w, http.StatusOK, s.Snapshot())
	}
}

func (h *handler) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to close session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type queryRequest struct {
	Prompt string `json:"prompt"`
}

type queryRejected struct {
	Error  string         `json:"error"`
	Notice session.Notice `json:"notice"`
}

func (h *handler) submitQuery(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.retryReadiness(r.Context())
	if err := s.Submit(req.Prompt); err != nil {
		writeJSON(w, submitStatus(err), queryRejected{Error: err.Error(), Notice: session.NoticeFor(err)})
		return
	}
	writeJSON(w, http.StatusAccepted, s.Snapshot())
}

// refreshQuery re-runs the session's last prompt.
func (h *handler) refreshQuery(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.retryReadiness(r.Context())
	if err := s.Refresh(); err != nil {
		writeJSON(w, submitStatus(err), queryRejected{Error: err.Error(), Notice: session.NoticeFor(err)})
		return
	}
	writeJSON(w, http.StatusAccepted, s.Snapshot())
}

func submitStatus(err error) int {
	switch {
	case errors.Is(err, dispatch.ErrNotReady), errors.Is(err, dispatch.ErrReadinessFailed):
		return http.StatusServiceUnavailable
	case errors.Is(err, dispatch.ErrEmptyPrompt), errors.Is(err, dispatch.ErrNoSelection),
		errors.Is(err, session.ErrNoPrompt):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, session.ErrClosed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) stopQuery(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Stop(); err != nil && !errors.Is(err, session.ErrIdle) {
		http.Error(w, "failed to stop query", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *handler) toggleExpand(w http.ResponseWriter, r *http.Request) {
	h.cardOp(w, r, (*session.Session).ToggleExpand)
}

func (h *handler) toggleMaximize(w http.ResponseWriter, r *http.Request) {
	h.cardOp(w, r, (*session.Session).ToggleMaximize)
}

func (h *handler) cardOp(w http.ResponseWriter, r *http.Request, op func(*session.Session, string) (session.Snapshot, error)) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	snap, err := op(s, chi.URLParam(r, "model"))
	if err != nil {
		if errors.Is(err, session.ErrUnknownCard) {
			http.Error(w, "card not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update card", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
