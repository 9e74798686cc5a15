package api

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"omnibot/dispatch"
	"omnibot/model"
	"omnibot/prefs"
	"omnibot/session"
	"omnibot/task"
)

// Deps is everything the HTTP surface talks to.
type Deps struct {
	Sessions *session.Manager
	Prefs    *prefs.Manager
	Registry *model.Registry
	Tasks    *task.Catalog
	Ready    dispatch.Readiness
}

func RegisterRoutes(deps Deps, staticFS fs.FS) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := &handler{
		sessions: deps.Sessions,
		prefs:    deps.Prefs,
		registry: deps.Registry,
		tasks:    deps.Tasks,
		ready:    deps.Ready,
	}

	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ready", h.readiness)

		r.Get("/models", h.listModels)
		r.Get("/tasks", h.listTasks)
		r.Post("/tasks/{name}/select", h.selectTask)

		r.Get("/preferences", h.getPreferences)
		r.Put("/preferences", h.putPreferences)
		r.Post("/preferences/models/{id}/toggle", h.toggleModel)
		r.Put("/preferences/layout", h.setLayout)

		r.Get("/sessions", h.listSessions)
		r.Post("/sessions", h.createSession)
		r.Get("/sessions/{id}", h.getSession)
		r.Delete("/sessions/{id}", h.closeSession)
		r.Post("/sessions/{id}/query", h.submitQuery)
		r.Post("/sessions/{id}/refresh", h.refreshQuery)
		r.Post("/sessions/{id}/stop", h.stopQuery)
		r.Post("/sessions/{id}/cards/{model}/expand", h.toggleExpand)
		r.Post("/sessions/{id}/cards/{model}/maximize", h.toggleMaximize)
		r.Get("/sessions/{id}/ws", h.handleWS)
	})

	// Strip the "static/" prefix present in the embed.FS. A dev FS rooted at
	// the static directory itself has no such prefix, so probe index.html.
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		staticSub = staticFS
	} else if _, statErr := fs.Stat(staticSub, "index.html"); statErr != nil {
		staticSub = staticFS
	}

	// http.FileServer redirects ".../index.html" to "./", so the page is
	// read and written directly.
	r.Get("/", serveFile(staticSub, "index.html"))

	fileServer := http.FileServer(http.FS(staticSub))
	r.Get("/css/*", fileServer.ServeHTTP)
	r.Get("/js/*", fileServer.ServeHTTP)

	return r
}

// serveFile returns a handler that reads a single file from fsys and sends it.
func serveFile(fsys fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}
}

type handler struct {
	sessions *session.Manager
	prefs    *prefs.Manager
	registry *model.Registry
	tasks    *task.Catalog
	ready    dispatch.Readiness
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// retrier is a readiness latch that can probe the gateway again.
type retrier interface {
	Retry(ctx context.Context) error
}

// retryReadiness re-probes a gateway that is not ready, so a failed start-up
// probe does not stick until restart.
func (h *handler) retryReadiness(ctx context.Context) {
	if h.ready == nil || (h.ready.Ready() && h.ready.Err() == nil) {
		return
	}
	if rt, ok := h.ready.(retrier); ok {
		_ = rt.Retry(ctx)
	}
}

func (h *handler) readiness(w http.ResponseWriter, r *http.Request) {
	h.retryReadiness(r.Context())
	resp := struct {
		Ready bool   `json:"ready"`
		Error string `json:"error,omitempty"`
	}{Ready: true}
	if h.ready != nil {
		resp.Ready = h.ready.Ready()
		if err := h.ready.Err(); err != nil {
			resp.Ready = false
			resp.Error = err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
