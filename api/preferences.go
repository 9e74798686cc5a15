package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"omnibot/prefs"
)

type modelInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

type taskInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// listModels returns the registry with selected models first.
func (h *handler) listModels(w http.ResponseWriter, r *http.Request) {
	selected := h.prefs.SelectedModels()
	sorted := h.prefs.SortModels(h.registry.All())
	out := make([]modelInfo, 0, len(sorted))
	for _, p := range sorted {
		out = append(out, modelInfo{ID: p.ID(), Name: p.Name(), Selected: slices.Contains(selected, p.ID())})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) listTasks(w http.ResponseWriter, r *http.Request) {
	presets := h.tasks.Presets()
	out := make([]taskInfo, 0, len(presets))
	for _, p := range presets {
		out = append(out, taskInfo{Name: p.Name, Description: p.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

// selectTask replaces the selection with the preset's resolved models.
func (h *handler) selectTask(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := h.tasks.Lookup(name); !ok {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	ids := h.tasks.Resolve(name, h.registry.All())
	p, err := h.prefs.SetSelection(ids)
	if err != nil {
		http.Error(w, "failed to save preferences", http.StatusInternalServerError)
		return
	}
	h.sessions.Broadcast()
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) getPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.prefs.Get())
}

func (h *handler) putPreferences(w http.ResponseWriter, r *http.Request) {
	var req prefs.Preferences
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	// Ids the registry does not know are dropped.
	known := req.SelectedModels[:0]
	for _, id := range req.SelectedModels {
		if h.registry.Has(id) {
			known = append(known, id)
		}
	}
	req.SelectedModels = known

	p, err := h.prefs.Replace(req)
	if err != nil {
		h.writePrefsError(w, err)
		return
	}
	h.sessions.Broadcast()
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) toggleModel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.registry.Has(id) {
		http.Error(w, "model not found", http.StatusNotFound)
		return
	}
	p, err := h.prefs.ToggleModel(id)
	if err != nil {
		h.writePrefsError(w, err)
		return
	}
	h.sessions.Broadcast()
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) setLayout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ViewLayout prefs.Layout `json:"viewLayout"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, err := h.prefs.SetLayout(req.ViewLayout)
	if err != nil {
		h.writePrefsError(w, err)
		return
	}
	h.sessions.Broadcast()
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) writePrefsError(w http.ResponseWriter, err error) {
	if errors.Is(err, prefs.ErrInvalidLayout) {
		http.Error(w, "invalid view layout", http.StatusBadRequest)
		return
	}
	http.Error(w, "failed to save preferences", http.StatusInternalServerError)
}
